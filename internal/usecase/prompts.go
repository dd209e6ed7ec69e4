// File: internal/usecase/prompts.go
package usecase

import (
	"fmt"
	"strings"

	"seller-onboarding/internal/domain/model"
	"seller-onboarding/internal/domain/ports/adapter"
)

// ComposePrompt builds the instruction block steering the completion
// upstream for one step. The upstream gets no conversation history at all:
// continuity lives entirely in the echoed context, so the instruction has
// to carry the persona, the one permitted question and everything already
// collected.
func ComposePrompt(step model.Step, conv model.ConversationContext) string {
	var b strings.Builder

	b.WriteString("You are Nala, the friendly onboarding assistant of an Indonesian online marketplace. ")
	b.WriteString("You help a new seller set up their store, one short question at a time.\n\n")

	if conv.Get(model.FieldLanguage) == "en" {
		b.WriteString("Reply in English.\n")
	} else {
		b.WriteString("Reply in Indonesian (bahasa Indonesia).\n")
	}
	b.WriteString("Keep replies to one or two short sentences. ")
	b.WriteString("Ask exactly one thing and nothing else; never ask about a later step.\n\n")

	b.WriteString("Current task: ")
	b.WriteString(stepInstruction(step, conv))
	b.WriteString("\n")

	if known := renderKnown(conv); known != "" {
		b.WriteString("\nAlready collected from the seller:\n")
		b.WriteString(known)
	}
	return b.String()
}

func stepInstruction(step model.Step, conv model.ConversationContext) string {
	switch step {
	case model.StepLanguage:
		return "Greet the seller and ask whether they prefer Indonesian or English."
	case model.StepWelcome:
		return "Welcome the seller warmly, tell them setup takes about a minute, and ask if they are ready to start."
	case model.StepStoreName:
		return "Ask what they want to call their store (at least 3 characters)."
	case model.StepCategory:
		return "Ask what kind of products they will sell, e.g. fashion, food, electronics, crafts."
	case model.StepDescription:
		return "Ask for a one-sentence store description, and mention they can skip this."
	case model.StepPhone:
		return "Ask for the phone number buyers can reach them on."
	case model.StepComplete:
		name := conv.Get(model.FieldStoreName)
		if name == "" {
			name = "their store"
		}
		return fmt.Sprintf("Congratulate the seller: %s is registered and ready. Tell them they can now add products.", name)
	}
	return "Continue the onboarding conversation."
}

// renderKnown lists collected fields for the model's situational awareness.
// Internal bookkeeping fields stay out of the prompt.
func renderKnown(conv model.ConversationContext) string {
	var b strings.Builder
	for _, key := range []string{
		model.FieldLanguage,
		model.FieldStoreName,
		model.FieldCategory,
		model.FieldDescription,
		model.FieldPhone,
	} {
		if v := conv.Get(key); v != "" {
			fmt.Fprintf(&b, "- %s: %s\n", key, v)
		}
	}
	return b.String()
}

// UserTurnMessage inlines the instruction and the latest utterance into a
// single user-role message. The upstream backend only knows user/assistant
// roles, so the instruction cannot travel as a system message; it is
// prepended to the utterance instead. This must stay a single message for
// compatibility with backends lacking a system role.
func UserTurnMessage(instruction, utterance string) []adapter.Message {
	content := instruction
	if strings.TrimSpace(utterance) != "" {
		content += "\n\nThe seller just said:\n" + utterance
	} else {
		content += "\n\nThe conversation is just starting; deliver your opening line."
	}
	return []adapter.Message{{Role: adapter.RoleUser, Content: content}}
}
