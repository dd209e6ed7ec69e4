package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"seller-onboarding/internal/config"
	"seller-onboarding/internal/domain"
	"seller-onboarding/internal/domain/ports/adapter"
)

func nopLogger() *zerolog.Logger { l := zerolog.Nop(); return &l }

func newClient(t *testing.T, base string) *StreamingClient {
	t.Helper()
	c, err := NewStreamingClient(config.CompletionConfig{
		APIKey:         "test-key",
		BaseURL:        base,
		Model:          "gpt-4o-mini",
		MaxTokens:      64,
		ConnectTimeout: 2 * time.Second,
	}, nopLogger())
	if err != nil {
		t.Fatalf("NewStreamingClient: %v", err)
	}
	return c
}

func collect(t *testing.T, st adapter.Stream) []string {
	t.Helper()
	var out []string
	for {
		delta, err := st.Recv()
		if errors.Is(err, io.EOF) {
			return out
		}
		if err != nil {
			t.Fatalf("Recv: %v", err)
		}
		out = append(out, delta)
	}
}

func TestStreamChatRequiresAPIKey(t *testing.T) {
	_, err := NewStreamingClient(config.CompletionConfig{}, nopLogger())
	if err == nil {
		t.Fatal("empty api key accepted")
	}
}

func TestStreamChatDecodesChatDeltaShape(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization=%q", got)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"role\":\"assistant\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"Halo\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"!\"}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer ts.Close()

	st, err := newClient(t, ts.URL).StreamChat(context.Background(), []adapter.Message{{Role: "user", Content: "hi"}})
	if err != nil {
		t.Fatalf("StreamChat: %v", err)
	}
	defer st.Close()

	got := collect(t, st)
	if strings.Join(got, "") != "Halo!" {
		t.Fatalf("deltas=%v", got)
	}
}

func TestStreamChatToleratesAlternateShapes(t *testing.T) {
	// Legacy completions put the delta in choices[0].text; some gateways
	// emit a bare text field and skip the data: prefix entirely.
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data: {\"choices\":[{\"text\":\"A\"}]}\n")
		fmt.Fprint(w, "{\"text\":\"B\"}\n")
		fmt.Fprint(w, "data: {\"unknown\":true}\n")
		fmt.Fprint(w, "data: {\"text\":\"C\"}\n")
		fmt.Fprint(w, "data: [DONE]\n")
	}))
	defer ts.Close()

	st, err := newClient(t, ts.URL).StreamChat(context.Background(), []adapter.Message{{Role: "user", Content: "hi"}})
	if err != nil {
		t.Fatalf("StreamChat: %v", err)
	}
	defer st.Close()

	got := collect(t, st)
	if strings.Join(got, "") != "ABC" {
		t.Fatalf("deltas=%v", got)
	}
}

func TestStreamChatNon2xxIsUpstreamUnavailable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer ts.Close()

	_, err := newClient(t, ts.URL).StreamChat(context.Background(), []adapter.Message{{Role: "user", Content: "hi"}})
	if !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("err=%v, want ErrUpstreamUnavailable", err)
	}
}

func TestStreamChatConnectRefusedIsUpstreamUnavailable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // nothing listening anymore

	_, err := newClient(t, ts.URL).StreamChat(context.Background(), []adapter.Message{{Role: "user", Content: "hi"}})
	if !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("err=%v, want ErrUpstreamUnavailable", err)
	}
}

func TestStreamMidConnectionBreakSurfacesError(t *testing.T) {
	// Promise more body than is sent: the client sees the connection
	// break after the first delta instead of a clean end.
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "4096")
		fmt.Fprint(w, "data: {\"text\":\"partial\"}\n")
	}))
	defer ts.Close()

	st, err := newClient(t, ts.URL).StreamChat(context.Background(), []adapter.Message{{Role: "user", Content: "hi"}})
	if err != nil {
		t.Fatalf("StreamChat: %v", err)
	}
	defer st.Close()

	delta, err := st.Recv()
	if err != nil || delta != "partial" {
		t.Fatalf("first Recv=(%q, %v)", delta, err)
	}
	for {
		_, err = st.Recv()
		if err != nil {
			break
		}
	}
	if errors.Is(err, io.EOF) {
		t.Fatal("mid-stream break reported as clean EOF")
	}
}

func TestStreamChatCallerAbortCancelsUpstream(t *testing.T) {
	// The upstream handler holds the stream open until its request context
	// is cancelled; only the caller hanging up can release it.
	released := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"text\":\"halo\"}\n")
		if fl, ok := w.(http.Flusher); ok {
			fl.Flush()
		}
		<-r.Context().Done()
		close(released)
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	st, err := newClient(t, ts.URL).StreamChat(ctx, []adapter.Message{{Role: "user", Content: "hi"}})
	if err != nil {
		t.Fatalf("StreamChat: %v", err)
	}
	defer st.Close()

	if delta, err := st.Recv(); err != nil || delta != "halo" {
		t.Fatalf("first Recv=(%q, %v)", delta, err)
	}

	cancel()

	select {
	case <-released:
	case <-time.After(2 * time.Second):
		t.Fatal("upstream request still in flight after caller abort")
	}
	if _, err := st.Recv(); err == nil || errors.Is(err, io.EOF) {
		t.Fatalf("Recv after abort = %v, want transport error", err)
	}
}

func TestExtractDeltaPrecedence(t *testing.T) {
	// chat delta wins over legacy text when both appear
	got, ok := extractDelta([]byte(`{"text":"c","choices":[{"text":"b","delta":{"content":"a"}}]}`))
	if !ok || got != "a" {
		t.Fatalf("got (%q, %v)", got, ok)
	}
	got, ok = extractDelta([]byte(`{"choices":[{"text":"b"}]}`))
	if !ok || got != "b" {
		t.Fatalf("got (%q, %v)", got, ok)
	}
	got, ok = extractDelta([]byte(`{"text":"c"}`))
	if !ok || got != "c" {
		t.Fatalf("got (%q, %v)", got, ok)
	}
	if _, ok := extractDelta([]byte(`not json`)); ok {
		t.Fatal("malformed frame accepted")
	}
}
