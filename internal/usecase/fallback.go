// File: internal/usecase/fallback.go
package usecase

import (
	"fmt"

	"seller-onboarding/internal/domain/model"
)

// FallbackReply returns the canned assistant text for a step, used only
// when the completion upstream cannot be reached. Deterministic and pure:
// the same step and context always produce the same text, interpolating
// known fields where it helps.
func FallbackReply(step model.Step, conv model.ConversationContext) string {
	if conv.Get(model.FieldLanguage) == "en" {
		return fallbackEN(step, conv)
	}
	return fallbackID(step, conv)
}

func fallbackID(step model.Step, conv model.ConversationContext) string {
	switch step {
	case model.StepLanguage:
		return "Halo! Selamat datang. Mau lanjut dalam bahasa Indonesia atau English?"
	case model.StepWelcome:
		return "Siap! Kita mulai ya, cuma butuh sekitar satu menit. Sudah siap?"
	case model.StepStoreName:
		return "Mau dinamai apa tokomu? Minimal 3 huruf ya."
	case model.StepCategory:
		return "Produk apa yang mau kamu jual? Misalnya fashion, makanan, elektronik, atau kerajinan."
	case model.StepDescription:
		return "Ceritakan tokomu dalam satu kalimat. Ketik 'lewati' kalau mau mengisi nanti."
	case model.StepPhone:
		return "Terakhir, nomor HP yang bisa dihubungi pembeli?"
	case model.StepComplete:
		if name := conv.Get(model.FieldStoreName); name != "" {
			return fmt.Sprintf("Selamat! Toko %s sudah terdaftar. Kamu bisa mulai menambahkan produk sekarang.", name)
		}
		return "Selamat! Tokomu sudah terdaftar. Kamu bisa mulai menambahkan produk sekarang."
	}
	return "Maaf, bisa ulangi lagi?"
}

func fallbackEN(step model.Step, conv model.ConversationContext) string {
	switch step {
	case model.StepLanguage:
		return "Hi! Welcome. Would you like to continue in Indonesian or English?"
	case model.StepWelcome:
		return "Great! Let's get started, it only takes about a minute. Ready?"
	case model.StepStoreName:
		return "What would you like to call your store? At least 3 characters."
	case model.StepCategory:
		return "What kind of products will you sell? For example fashion, food, electronics or crafts."
	case model.StepDescription:
		return "Describe your store in one sentence, or type 'skip' to fill it in later."
	case model.StepPhone:
		return "Last one: which phone number can buyers reach you on?"
	case model.StepComplete:
		if name := conv.Get(model.FieldStoreName); name != "" {
			return fmt.Sprintf("Congratulations! %s is registered. You can start adding products now.", name)
		}
		return "Congratulations! Your store is registered. You can start adding products now."
	}
	return "Sorry, could you say that again?"
}
