// File: internal/usecase/sequencer.go
package usecase

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"seller-onboarding/internal/domain/model"
)

// Transition is the onboarding state machine: given the current step, the
// raw user utterance and the accumulated context, it returns the next step
// and the updated context. Pure, no I/O.
//
// The machine only ever moves forward one position per valid turn. On
// validation failure it reports the same step with the context untouched,
// which makes the next turn re-ask the same question. An empty utterance
// never advances anything; it only serves as the bootstrap that triggers
// the opening message on the first step.
func Transition(step model.Step, utterance string, conv model.ConversationContext) (model.Step, model.ConversationContext) {
	if step.Terminal() {
		return step, conv
	}
	msg := strings.TrimSpace(utterance)
	if msg == "" {
		return step, conv
	}

	switch step {
	case model.StepLanguage:
		return step.Next(), conv.With(model.FieldLanguage, classifyLanguage(msg))

	case model.StepWelcome:
		// Nothing captured here; any reply moves on.
		return step.Next(), conv

	case model.StepStoreName:
		if utf8.RuneCountInString(msg) < 3 {
			return step, conv
		}
		next := conv.With(model.FieldStoreName, msg)
		next[model.FieldStoreSlug] = slugify(msg)
		return step.Next(), next

	case model.StepCategory:
		// Free-form on purpose: the quick-reply categories are a UI
		// affordance, not something the server enforces.
		return step.Next(), conv.With(model.FieldCategory, msg)

	case model.StepDescription:
		if isSkipToken(msg) {
			return step.Next(), conv.With(model.FieldDescription, "")
		}
		return step.Next(), conv.With(model.FieldDescription, msg)

	case model.StepPhone:
		phone := stripSpaces(utterance)
		if !validPhone(phone) {
			return step, conv
		}
		return step.Next(), conv.With(model.FieldPhone, phone)
	}

	return step, conv
}

// classifyLanguage maps a free-text language choice onto "en" or "id".
// Indonesian is the default; only an explicit English keyword flips it.
func classifyLanguage(s string) string {
	l := strings.ToLower(s)
	if strings.Contains(l, "english") || strings.Contains(l, "inggris") {
		return "en"
	}
	return "id"
}

var skipTokens = map[string]struct{}{
	"skip":   {},
	"lewati": {},
	"nanti":  {},
}

func isSkipToken(s string) bool {
	_, ok := skipTokens[strings.ToLower(s)]
	return ok
}

// slugify derives a URL-safe store slug: lowercase, runs of spaces become a
// single hyphen, everything else non-alphanumeric is dropped.
func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	hyphen := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			hyphen = false
		case unicode.IsSpace(r):
			if b.Len() > 0 && !hyphen {
				b.WriteByte('-')
				hyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

var (
	// Local and international Indonesian mobile numbers.
	indoPhoneRe = regexp.MustCompile(`^(\+62|62|08|8)[0-9]{7,12}$`)
	// Generic fallback for sellers registering with a foreign number.
	genericPhoneRe = regexp.MustCompile(`^\+?[0-9]{8,15}$`)
)

func validPhone(s string) bool {
	return indoPhoneRe.MatchString(s) || genericPhoneRe.MatchString(s)
}

func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
