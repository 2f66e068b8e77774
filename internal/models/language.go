package models

import (
	"fmt"
	"strings"
)

// Language is an output language offered by the chat and image panels.
type Language string

const (
	LanguageEnglish   Language = "English"
	LanguageTelugu    Language = "Telugu"
	LanguageHindi     Language = "Hindi"
	LanguageTamil     Language = "Tamil"
	LanguageMalayalam Language = "Malayalam"
)

// speechCodes is the single language -> speech code lookup table.
var speechCodes = map[Language]string{
	LanguageEnglish:   "en",
	LanguageTelugu:    "te",
	LanguageHindi:     "hi",
	LanguageTamil:     "ta",
	LanguageMalayalam: "ml",
}

// Languages lists the supported languages in display order.
func Languages() []Language {
	return []Language{LanguageEnglish, LanguageTelugu, LanguageHindi, LanguageTamil, LanguageMalayalam}
}

// Code returns the speech language code, falling back to English.
func (l Language) Code() string {
	if c, ok := speechCodes[l]; ok {
		return c
	}
	return speechCodes[LanguageEnglish]
}

// IsEnglish reports whether no translation is needed.
func (l Language) IsEnglish() bool {
	return l == "" || l == LanguageEnglish
}

// ParseLanguage accepts a display name or a speech code, case-insensitively.
// An empty string means English.
func ParseLanguage(s string) (Language, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return LanguageEnglish, nil
	}
	for _, l := range Languages() {
		if strings.EqualFold(s, string(l)) || strings.EqualFold(s, l.Code()) {
			return l, nil
		}
	}
	return "", fmt.Errorf("unsupported language %q", s)
}

// DetectLanguage returns the first supported non-English language named in
// text, or English when none is mentioned.
func DetectLanguage(text string) Language {
	lower := strings.ToLower(text)
	for _, l := range Languages() {
		if l.IsEnglish() {
			continue
		}
		if strings.Contains(lower, strings.ToLower(string(l))) {
			return l
		}
	}
	return LanguageEnglish
}
