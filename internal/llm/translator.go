package llm

import (
	"context"
	"fmt"

	"mediscan/internal/models"
)

// Translator rewrites a reply in another language.
type Translator interface {
	Translate(ctx context.Context, text string, lang models.Language) (string, error)
}

// GeneratorTranslator translates with a second generation call.
type GeneratorTranslator struct {
	gen ContentGenerator
}

var _ Translator = (*GeneratorTranslator)(nil)

func NewTranslator(gen ContentGenerator) *GeneratorTranslator {
	return &GeneratorTranslator{gen: gen}
}

// TranslationInstruction is the instruction sent for lang.
func TranslationInstruction(lang models.Language) string {
	return fmt.Sprintf("Translate the following text to %s accurately for non-medical users:", lang)
}

// Translate returns text unchanged for English.
func (t *GeneratorTranslator) Translate(ctx context.Context, text string, lang models.Language) (string, error) {
	if lang.IsEnglish() {
		return text, nil
	}
	out, err := t.gen.Generate(ctx, Prompt{Instruction: TranslationInstruction(lang), Text: text})
	if err != nil {
		return "", fmt.Errorf("translate to %s: %w", lang, err)
	}
	return out, nil
}
