package usecase

import (
	"testing"

	"seller-onboarding/internal/domain/model"
)

func TestTransitionLanguage(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"English please", "en"},
		{"inggris", "en"},
		{"Bahasa Indonesia", "id"},
		{"indonesia aja", "id"},
		{"whatever", "id"}, // default
	}
	for _, c := range cases {
		next, conv := Transition(model.StepLanguage, c.in, model.ConversationContext{})
		if next != model.StepWelcome {
			t.Fatalf("language %q: next=%s want welcome", c.in, next)
		}
		if got := conv.Get(model.FieldLanguage); got != c.want {
			t.Fatalf("language %q: classified %q want %q", c.in, got, c.want)
		}
	}
}

func TestTransitionBootstrapEmptyUtterance(t *testing.T) {
	// The conversation-bootstrap turn carries an empty message; it must
	// stay on the first step without touching context.
	next, conv := Transition(model.StepLanguage, "", model.ConversationContext{})
	if next != model.StepLanguage || len(conv) != 0 {
		t.Fatalf("bootstrap: got (%s, %v)", next, conv)
	}

	// Empty never advances a data-bearing step either.
	orig := model.ConversationContext{model.FieldLanguage: "id"}
	next, conv = Transition(model.StepStoreName, "   ", orig)
	if next != model.StepStoreName {
		t.Fatalf("empty at store_name advanced to %s", next)
	}
	if conv.Get(model.FieldStoreName) != "" {
		t.Fatalf("empty at store_name captured data: %v", conv)
	}
}

func TestTransitionStoreName(t *testing.T) {
	next, conv := Transition(model.StepStoreName, "ab", model.ConversationContext{})
	if next != model.StepStoreName || conv.Get(model.FieldStoreName) != "" {
		t.Fatalf("2-char name accepted: (%s, %v)", next, conv)
	}

	next, conv = Transition(model.StepStoreName, "ABC", model.ConversationContext{})
	if next != model.StepCategory {
		t.Fatalf("3-char name rejected: next=%s", next)
	}
	if conv.Get(model.FieldStoreName) != "ABC" {
		t.Fatalf("storeName=%q want ABC", conv.Get(model.FieldStoreName))
	}
	if conv.Get(model.FieldStoreSlug) != "abc" {
		t.Fatalf("storeSlug=%q want abc", conv.Get(model.FieldStoreSlug))
	}
}

func TestSlugify(t *testing.T) {
	cases := []struct{ in, want string }{
		{"ABC", "abc"},
		{"Warung Kopi Nusantara", "warung-kopi-nusantara"},
		{"Toko  Budi!", "toko-budi"},
		{"  Batik & Tenun  ", "batik-tenun"},
		{"sudah-bagus 99", "sudahbagus-99"},
	}
	for _, c := range cases {
		if got := slugify(c.in); got != c.want {
			t.Fatalf("slugify(%q)=%q want %q", c.in, got, c.want)
		}
	}
}

func TestTransitionDescriptionSkipTokens(t *testing.T) {
	for _, tok := range []string{"skip", "SKIP", "lewati", "Nanti"} {
		next, conv := Transition(model.StepDescription, tok, model.ConversationContext{})
		if next != model.StepPhone {
			t.Fatalf("skip token %q did not advance", tok)
		}
		v, ok := conv[model.FieldDescription]
		if !ok || v != "" {
			t.Fatalf("skip token %q: description=%q ok=%v, want empty string set", tok, v, ok)
		}
	}

	next, conv := Transition(model.StepDescription, "  Jual kopi enak  ", model.ConversationContext{})
	if next != model.StepPhone || conv.Get(model.FieldDescription) != "Jual kopi enak" {
		t.Fatalf("description not trimmed/stored: (%s, %v)", next, conv)
	}
}

func TestPhoneValidator(t *testing.T) {
	accept := []string{"+6281234567890", "081234567890", "81234567890", "628123456789", "+14155551234", "0812 3456 7890"}
	reject := []string{"abc", "123", "", "+", "08a1234567", "+6212"}

	for _, in := range accept {
		next, conv := Transition(model.StepPhone, in, model.ConversationContext{})
		if next != model.StepComplete {
			t.Fatalf("phone %q rejected", in)
		}
		if conv.Get(model.FieldPhone) == "" {
			t.Fatalf("phone %q not captured", in)
		}
	}
	for _, in := range reject {
		next, conv := Transition(model.StepPhone, in, model.ConversationContext{model.FieldLanguage: "id"})
		if next != model.StepPhone {
			t.Fatalf("phone %q accepted", in)
		}
		if conv.Get(model.FieldPhone) != "" {
			t.Fatalf("phone %q captured on failure", in)
		}
	}
}

func TestPhoneWhitespaceNormalized(t *testing.T) {
	_, conv := Transition(model.StepPhone, "0812 3456 7890", model.ConversationContext{})
	if got := conv.Get(model.FieldPhone); got != "081234567890" {
		t.Fatalf("phone stored as %q, want whitespace stripped", got)
	}
}

func TestFullWalkReachesComplete(t *testing.T) {
	utterances := map[model.Step]string{
		model.StepLanguage:    "bahasa indonesia",
		model.StepWelcome:     "siap",
		model.StepStoreName:   "Warung Kopi",
		model.StepCategory:    "makanan",
		model.StepDescription: "Kopi susu gula aren",
		model.StepPhone:       "081234567890",
	}

	step := model.FirstStep()
	conv := model.ConversationContext{}
	seen := map[string]string{}

	for i := 0; i < len(utterances); i++ {
		next, updated := Transition(step, utterances[step], conv)
		if next == step {
			t.Fatalf("valid utterance at %s did not advance", step)
		}
		// Monotonicity: nothing already captured may vanish or change.
		for k, v := range seen {
			if updated.Get(k) != v {
				t.Fatalf("step %s mutated %s: %q -> %q", step, k, v, updated.Get(k))
			}
		}
		for k, v := range updated {
			seen[k] = v
		}
		step, conv = next, updated
	}

	if step != model.StepComplete {
		t.Fatalf("walk ended on %s, want complete", step)
	}
	for _, k := range []string{
		model.FieldLanguage, model.FieldStoreName, model.FieldStoreSlug,
		model.FieldCategory, model.FieldDescription, model.FieldPhone,
	} {
		if _, ok := conv[k]; !ok {
			t.Fatalf("final context missing %s: %v", k, conv)
		}
	}

	// Terminal step accepts no further transitions.
	next, after := Transition(model.StepComplete, "hello again", conv)
	if next != model.StepComplete || len(after) != len(conv) {
		t.Fatalf("terminal step transitioned: (%s, %v)", next, after)
	}
}

func TestTransitionDoesNotMutateInput(t *testing.T) {
	orig := model.ConversationContext{model.FieldLanguage: "id"}
	_, _ = Transition(model.StepStoreName, "Toko Budi", orig)
	if len(orig) != 1 {
		t.Fatalf("input context mutated: %v", orig)
	}
}
