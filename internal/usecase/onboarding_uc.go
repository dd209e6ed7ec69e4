// File: internal/usecase/onboarding_uc.go
package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"seller-onboarding/internal/domain"
	"seller-onboarding/internal/domain/model"
	"seller-onboarding/internal/domain/ports/repository"
	"seller-onboarding/internal/infra/logging"
	"seller-onboarding/internal/infra/metrics"
)

// Compile-time check
var _ OnboardingUseCase = (*onboardingUC)(nil)

// TurnResult is everything the transport layer needs before it may start
// streaming: the transition outcome (delivered as response headers, so it
// must exist up front) plus the instruction and canned fallback for the
// step the assistant speaks for next.
type TurnResult struct {
	NextStep model.Step
	Context  model.ConversationContext
	Prompt   string
	Fallback string

	// Persisted reports whether this turn durably stored the profile.
	// False on the terminal turn means the write failed and was handed
	// to the retry queue; the turn itself still succeeds.
	Persisted bool
}

type OnboardingUseCase interface {
	Advance(ctx context.Context, step model.Step, utterance string, conv model.ConversationContext) *TurnResult
}

// Retrier re-runs failed side effects outside the request path.
type Retrier interface {
	Submit(task func(ctx context.Context) error) error
}

type onboardingUC struct {
	sellers repository.SellerRepository
	retry   Retrier
	log     *zerolog.Logger
}

func NewOnboardingUseCase(sellers repository.SellerRepository, retry Retrier, logger *zerolog.Logger) *onboardingUC {
	return &onboardingUC{sellers: sellers, retry: retry, log: logger}
}

// Advance runs one turn: mint a seller identity on the bootstrap turn,
// compute the transition, persist the profile when the flow lands on the
// terminal step, and prepare the instruction + fallback for the next step.
// A turn always produces a result; persistence failure never fails it.
func (u *onboardingUC) Advance(ctx context.Context, step model.Step, utterance string, conv model.ConversationContext) *TurnResult {
	defer logging.TraceDuration(u.log, "OnboardingUC.Advance")()

	if conv.Get(model.FieldSellerID) == "" {
		conv = conv.With(model.FieldSellerID, ulid.Make().String())
	}

	next, updated := Transition(step, utterance, conv)
	metrics.IncTurn(string(step), next != step)

	persisted := false
	if next.Terminal() && !step.Terminal() {
		persisted = u.persistProfile(ctx, updated)
	}

	return &TurnResult{
		NextStep:  next,
		Context:   updated,
		Prompt:    ComposePrompt(next, updated),
		Fallback:  FallbackReply(next, updated),
		Persisted: persisted,
	}
}

func (u *onboardingUC) persistProfile(ctx context.Context, conv model.ConversationContext) bool {
	profile, err := model.NewSellerProfile(conv)
	if err != nil {
		// The sequencer guarantees the fields; reaching this means a bug.
		u.log.Error().Err(err).Msg("terminal context missing required fields")
		return false
	}
	if err := u.upsertProfile(ctx, profile); err != nil {
		metrics.IncPersistFailure()
		u.log.Error().Err(err).Str("seller_id", profile.ID).Msg("seller profile upsert failed; queueing retry")
		u.schedulePersistRetry(profile)
		return false
	}
	u.log.Info().Str("seller_id", profile.ID).Str("store_slug", profile.StoreSlug).Msg("seller profile stored")
	return true
}

// upsertProfile writes the profile, deduplicating the store slug when
// another seller already claimed it. Store names are free text, so two
// sellers can derive the same slug; the second one gets a suffix instead
// of losing their profile.
func (u *onboardingUC) upsertProfile(ctx context.Context, profile *model.SellerProfile) error {
	err := u.sellers.Upsert(ctx, profile)
	if errors.Is(err, domain.ErrAlreadyExists) {
		profile.StoreSlug = dedupeSlug(profile.StoreSlug, profile.ID)
		u.log.Info().Str("seller_id", profile.ID).Str("store_slug", profile.StoreSlug).Msg("store slug taken; deduplicating")
		err = u.sellers.Upsert(ctx, profile)
	}
	return err
}

// dedupeSlug suffixes a taken slug with the tail of the seller identity.
// Deterministic per seller, so retries of the same write stay idempotent.
func dedupeSlug(slug, sellerID string) string {
	suffix := strings.ToLower(sellerID)
	if len(suffix) > 6 {
		suffix = suffix[len(suffix)-6:]
	}
	if strings.HasSuffix(slug, "-"+suffix) {
		return slug
	}
	return slug + "-" + suffix
}

const (
	persistRetryAttempts = 3
	persistRetryBackoff  = 5 * time.Second
)

// schedulePersistRetry hands the failed upsert to the background queue.
// The turn has already been answered at this point; this is the
// availability-over-consistency trade-off being paid back.
func (u *onboardingUC) schedulePersistRetry(profile *model.SellerProfile) {
	if u.retry == nil {
		return
	}
	err := u.retry.Submit(func(ctx context.Context) error {
		var lastErr error
		for attempt := 1; attempt <= persistRetryAttempts; attempt++ {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * persistRetryBackoff):
			}
			if lastErr = u.upsertProfile(ctx, profile); lastErr == nil {
				metrics.IncPersistRetry("recovered")
				u.log.Info().Str("seller_id", profile.ID).Int("attempt", attempt).Msg("seller profile upsert recovered")
				return nil
			}
		}
		metrics.IncPersistRetry("exhausted")
		u.log.Error().Err(lastErr).Str("seller_id", profile.ID).Msg("seller profile upsert retries exhausted")
		return lastErr
	})
	if err != nil {
		u.log.Error().Err(err).Str("seller_id", profile.ID).Msg("persist retry queue rejected task")
	}
}
