package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLanguage(t *testing.T) {
	cases := map[string]Language{
		"":          LanguageEnglish,
		"english":   LanguageEnglish,
		"Telugu":    LanguageTelugu,
		"te":        LanguageTelugu,
		" HI ":      LanguageHindi,
		"tamil":     LanguageTamil,
		"ml":        LanguageMalayalam,
		"Malayalam": LanguageMalayalam,
	}
	for in, want := range cases {
		got, err := ParseLanguage(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLanguage("Klingon")
	assert.Error(t, err)
}

func TestLanguageCode(t *testing.T) {
	assert.Equal(t, "en", LanguageEnglish.Code())
	assert.Equal(t, "te", LanguageTelugu.Code())
	assert.Equal(t, "hi", LanguageHindi.Code())
	assert.Equal(t, "ta", LanguageTamil.Code())
	assert.Equal(t, "ml", LanguageMalayalam.Code())
	assert.Equal(t, "en", Language("Klingon").Code())
	assert.Len(t, Languages(), 5)
}

func TestDetectLanguage(t *testing.T) {
	assert.Equal(t, LanguageTelugu, DetectLanguage("Explain diabetes in TELUGU please"))
	assert.Equal(t, LanguageHindi, DetectLanguage("answer in hindi"))
	assert.Equal(t, LanguageEnglish, DetectLanguage("what is a fever?"))
}

func TestSessionGateAndReset(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewSession("s1", now)
	assert.Equal(t, GateLogin, s.Gate())

	s.Page = PageSignUp
	assert.Equal(t, GateSignUp, s.Gate())

	s.Authenticated, s.Username, s.Page = true, "alice", PageChat
	s.ChatLog = append(s.ChatLog, ChatMessage{Role: RoleUser, Text: "hi"})
	assert.Equal(t, GateAuthenticated, s.Gate())
	_, ok := s.LastReply()
	assert.False(t, ok, "last entry is the user's")

	s.ChatLog = append(s.ChatLog, ChatMessage{Role: RoleAssistant, Text: "hello"})
	last, ok := s.LastReply()
	require.True(t, ok)
	assert.Equal(t, "hello", last.Text)

	later := now.Add(time.Hour)
	s.Reset(later)
	assert.Equal(t, "s1", s.ID)
	assert.False(t, s.Authenticated)
	assert.Empty(t, s.Username)
	assert.Empty(t, s.ChatLog)
	assert.Equal(t, PageLogin, s.Page)
	assert.Equal(t, now, s.CreatedAt)
	assert.Equal(t, later, s.UpdatedAt)
}

func TestPageIsAppPage(t *testing.T) {
	for _, p := range []Page{PageHome, PageChat, PageImage, PageRisk} {
		assert.True(t, p.IsAppPage(), p)
	}
	for _, p := range []Page{PageLogin, PageSignUp, "admin"} {
		assert.False(t, p.IsAppPage(), p)
	}
}
