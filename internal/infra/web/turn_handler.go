// File: internal/infra/web/turn_handler.go
package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"seller-onboarding/internal/domain"
	"seller-onboarding/internal/domain/model"
	"seller-onboarding/internal/infra/logging"
	"seller-onboarding/internal/infra/metrics"
	red "seller-onboarding/internal/infra/redis"
	"seller-onboarding/internal/usecase"
)

// turnRequest is one conversation turn. The caller echoes step and context
// from the previous response; the server holds nothing in between.
type turnRequest struct {
	Message string            `json:"message"`
	Step    string            `json:"step"`
	Context map[string]string `json:"context"`
}

const rateWindow = time.Minute

// handleTurn runs one onboarding turn and relays the assistant reply as a
// server-sent event stream.
//
// Ordering is strict: the transition (and, on the terminal step, the
// profile write) must finish before the first body byte, because the
// transition outcome travels in response headers and headers cannot be
// amended once streaming starts.
func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	var req turnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	step, err := model.ParseStep(req.Step)
	if err != nil {
		http.Error(w, "unknown step", http.StatusBadRequest)
		return
	}
	conv := model.ConversationContext(req.Context)
	if conv == nil {
		conv = model.ConversationContext{}
	}

	ctx := r.Context()
	if id := conv.Get(model.FieldSellerID); id != "" {
		ctx = logging.WithSellerID(ctx, id)
	}
	ctx = logging.WithStep(ctx, step.String())
	log := logging.With(ctx, s.log)

	if !s.allowTurn(r, conv) {
		metrics.IncRateLimited()
		http.Error(w, domain.ErrRateLimited.Error(), http.StatusTooManyRequests)
		return
	}

	res := s.onboarding.Advance(ctx, step, req.Message, conv)

	ctxJSON, err := json.Marshal(res.Context)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	w.Header().Set("X-Next-Step", res.NextStep.String())
	w.Header().Set("X-Context", string(ctxJSON))
	w.WriteHeader(http.StatusOK)

	s.relay(r, w, res, req.Message, log)
}

// allowTurn applies the per-seller rate limit. Redis trouble fails open:
// throttling is protection, not a correctness requirement.
func (s *Server) allowTurn(r *http.Request, conv model.ConversationContext) bool {
	if s.limiter == nil {
		return true
	}
	key := conv.Get(model.FieldSellerID)
	if key == "" {
		key = r.RemoteAddr
	}
	allowed, err := s.limiter.Allow(r.Context(), red.TurnKey(key), s.turnLimit, rateWindow)
	if err != nil {
		s.log.Warn().Err(err).Msg("rate limiter unavailable; allowing turn")
		return true
	}
	return allowed
}

// relay opens the upstream completion stream and forwards each text delta
// as an outbound frame the moment it arrives. Upstream connect failure
// degrades to the canned fallback reply; a mid-stream break forwards what
// was received. Either way the body ends with exactly one [DONE] sentinel.
func (s *Server) relay(r *http.Request, w http.ResponseWriter, res *usecase.TurnResult, utterance string, log *zerolog.Logger) {
	fl, _ := w.(http.Flusher)
	start := time.Now()

	// The upstream request inherits the caller's context: an aborted
	// client connection cancels the in-flight upstream call instead of
	// draining it.
	st, err := s.completion.StreamChat(r.Context(), usecase.UserTurnMessage(res.Prompt, utterance))
	if err != nil {
		log.Warn().Err(err).Msg("completion upstream unavailable; serving fallback")
		metrics.IncRelayFallback("unavailable")
		writeTextFrame(w, fl, res.Fallback)
		writeSentinel(w, fl)
		metrics.ObserveRelayLatency(time.Since(start).Milliseconds(), "fallback")
		return
	}
	defer st.Close()

	outcome := "success"
	for {
		delta, err := st.Recv()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				if r.Context().Err() != nil {
					// The caller hung up, not the upstream.
					outcome = "aborted"
				} else {
					// Mid-stream break after deltas already reached the
					// caller: no retry, forward what arrived and finish
					// the turn cleanly.
					outcome = "truncated"
					metrics.IncRelayFallback("stream_error")
					log.Warn().Err(err).Msg("completion stream broke mid-turn; truncating")
				}
			}
			break
		}
		writeTextFrame(w, fl, delta)
		metrics.IncRelayDelta()
	}
	writeSentinel(w, fl)
	metrics.ObserveRelayLatency(time.Since(start).Milliseconds(), outcome)
}

func writeTextFrame(w io.Writer, fl http.Flusher, text string) {
	b, _ := json.Marshal(struct {
		Text string `json:"text"`
	}{Text: text})
	fmt.Fprintf(w, "data: %s\n\n", b)
	if fl != nil {
		fl.Flush()
	}
}

func writeSentinel(w io.Writer, fl http.Flusher) {
	fmt.Fprint(w, "data: [DONE]\n\n")
	if fl != nil {
		fl.Flush()
	}
}
