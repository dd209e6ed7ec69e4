// File: internal/infra/adapters/ai/openai_stream.go
package ai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	"github.com/rs/zerolog"

	"seller-onboarding/internal/config"
	"seller-onboarding/internal/domain"
	"seller-onboarding/internal/domain/ports/adapter"
	"seller-onboarding/internal/infra/metrics"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.CompletionStreamer = (*StreamingClient)(nil)

// StreamingClient talks to any OpenAI-compatible chat-completions gateway
// with stream=true. Chat completions path is the same as OpenAI:
// /chat/completions, Authorization: Bearer <key>.
//
// Different gateways frame their deltas differently, so decoding tolerates
// the known shapes instead of binding to one provider SDK.
type StreamingClient struct {
	apiKey    string
	base      string // e.g. https://api.openai.com/v1
	model     string
	maxTokens int
	client    *http.Client

	encOnce sync.Once
	enc     *tiktoken.Tiktoken

	log *zerolog.Logger
}

func NewStreamingClient(cfg config.CompletionConfig, logger *zerolog.Logger) (*StreamingClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("completion api key empty")
	}
	// No client-level timeout: it would kill long streams. The connect
	// phase is bounded per call; reads are bounded by the caller's ctx.
	c := &http.Client{
		Transport: &http.Transport{
			ResponseHeaderTimeout: cfg.ConnectTimeout,
		},
	}
	return &StreamingClient{
		apiKey:    cfg.APIKey,
		base:      strings.TrimRight(cfg.BaseURL, "/"),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		client:    c,
		log:       logger,
	}, nil
}

// encoder loads the tokenizer lazily: tiktoken fetches its BPE tables on
// first use, and that must neither delay startup nor break streaming when
// the fetch fails. A nil encoder just disables the token metric.
func (s *StreamingClient) encoder() *tiktoken.Tiktoken {
	s.encOnce.Do(func() {
		enc, err := tiktoken.EncodingForModel(s.model)
		if err != nil {
			enc, err = tiktoken.GetEncoding("cl100k_base")
		}
		if err != nil {
			s.log.Debug().Err(err).Msg("tokenizer unavailable; prompt token metric disabled")
			return
		}
		s.enc = enc
	})
	return s.enc
}

func (s *StreamingClient) StreamChat(ctx context.Context, messages []adapter.Message) (adapter.Stream, error) {
	reqBody := struct {
		Model     string            `json:"model"`
		Messages  []adapter.Message `json:"messages"`
		MaxTokens int               `json:"max_tokens,omitempty"`
		Stream    bool              `json:"stream"`
	}{Model: s.model, Messages: messages, MaxTokens: s.maxTokens, Stream: true}

	b, _ := json.Marshal(reqBody)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.base+"/chat/completions", bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	s.countPromptTokens(messages)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w: http %d", domain.ErrUpstreamUnavailable, resp.StatusCode)
	}
	return &completionStream{rd: bufio.NewReader(resp.Body), body: resp.Body}, nil
}

func (s *StreamingClient) countPromptTokens(messages []adapter.Message) {
	enc := s.encoder()
	if enc == nil {
		return
	}
	n := 0
	for _, m := range messages {
		n += len(enc.Encode(m.Content, nil, nil))
	}
	metrics.AddPromptTokens(s.model, n)
	s.log.Debug().Int("prompt_tokens", n).Str("model", s.model).Msg("completion request")
}

// completionStream decodes the upstream's line-delimited frames. Nothing is
// buffered beyond the line needed to complete one JSON object.
type completionStream struct {
	rd   *bufio.Reader
	body io.ReadCloser
	done bool
}

func (c *completionStream) Recv() (string, error) {
	if c.done {
		return "", io.EOF
	}
	for {
		line, err := c.rd.ReadBytes('\n')
		if len(line) == 0 && err != nil {
			if err == io.EOF {
				c.done = true
				return "", io.EOF
			}
			return "", err
		}
		payload := bytes.TrimSpace(line)
		payload = bytes.TrimPrefix(payload, []byte("data:"))
		payload = bytes.TrimSpace(payload)
		if len(payload) == 0 {
			continue
		}
		if bytes.Equal(payload, []byte("[DONE]")) {
			c.done = true
			return "", io.EOF
		}
		delta, ok := extractDelta(payload)
		if !ok || delta == "" {
			// role-only delta, keepalive, or a frame shape we don't
			// know; skip rather than break the stream
			continue
		}
		return delta, nil
	}
}

func (c *completionStream) Close() error { return c.body.Close() }

// extractDelta pulls the text delta out of one upstream JSON frame.
// Backends disagree on where the text lives, so this is an ordered list of
// attempts, not a temporary hack: choices[0].delta.content (OpenAI chat),
// choices[0].text (legacy completions), then a bare text field.
func extractDelta(payload []byte) (string, bool) {
	var frame struct {
		Text    string `json:"text"`
		Choices []struct {
			Text  string `json:"text"`
			Delta struct {
				Content string `json:"content"`
			} `json:"delta"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(payload, &frame); err != nil {
		return "", false
	}
	if len(frame.Choices) > 0 {
		if frame.Choices[0].Delta.Content != "" {
			return frame.Choices[0].Delta.Content, true
		}
		if frame.Choices[0].Text != "" {
			return frame.Choices[0].Text, true
		}
	}
	if frame.Text != "" {
		return frame.Text, true
	}
	return "", true
}
