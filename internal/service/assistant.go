package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mediscan/internal/llm"
	"mediscan/internal/models"
	"mediscan/internal/speech"

	"github.com/gabriel-vasile/mimetype"
)

var allowedImageTypes = []string{"image/png", "image/jpeg"}

// AssistantService runs the chat and image panels against the hosted model,
// the translator and the speech synthesizer.
type AssistantService struct {
	sessions   *sessionStore
	generator  llm.ContentGenerator
	translator llm.Translator
	speech     speech.Synthesizer
	activity   recorder

	generateTimeout time.Duration
	speechTimeout   time.Duration
	maxImageBytes   int64
}

func NewAssistantService(sessions *sessionStore, c Collaborators, activity recorder, opts Options) *AssistantService {
	return &AssistantService{
		sessions:        sessions,
		generator:       c.Generator,
		translator:      c.Translator,
		speech:          c.Speech,
		activity:        activity,
		generateTimeout: opts.GenerateTimeout,
		speechTimeout:   opts.SpeechTimeout,
		maxImageBytes:   opts.MaxUploadBytes,
	}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func (s *AssistantService) generate(ctx context.Context, p llm.Prompt) (string, error) {
	ctx, cancel := withTimeout(ctx, s.generateTimeout)
	defer cancel()
	out, err := s.generator.Generate(ctx, p)
	if err != nil {
		return "", collaboratorError("generate", err)
	}
	return out, nil
}

func (s *AssistantService) translate(ctx context.Context, text string, lang models.Language) (string, error) {
	if lang.IsEnglish() {
		return text, nil
	}
	ctx, cancel := withTimeout(ctx, s.generateTimeout)
	defer cancel()
	out, err := s.translator.Translate(ctx, text, lang)
	if err != nil {
		return "", collaboratorError("translate", err)
	}
	return out, nil
}

func (s *AssistantService) synthesize(ctx context.Context, text string, lang models.Language) ([]byte, error) {
	ctx, cancel := withTimeout(ctx, s.speechTimeout)
	defer cancel()
	audio, err := s.speech.Synthesize(ctx, text, lang.Code())
	if err != nil {
		return nil, collaboratorError("synthesize", err)
	}
	return audio, nil
}

func (s *AssistantService) record(ctx context.Context, sess models.Session, typ, desc string, err error, meta map[string]any) {
	a := models.Activity{
		Type:        typ,
		SessionID:   sess.ID,
		Username:    sess.Username,
		Description: desc,
		Metadata:    meta,
	}
	if err != nil {
		a.Type = models.ActivityError
		if meta == nil {
			meta = map[string]any{}
		}
		meta["action"] = typ
		meta["error"] = err.Error()
		a.Metadata = meta
	}
	s.activity.Record(ctx, a)
}

// Chat answers message and appends the user turn and the reply. An empty
// lang is inferred from the message ("... in Telugu").
func (s *AssistantService) Chat(ctx context.Context, sessionID, message string, lang models.Language) (models.Session, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return models.Session{}, required("message")
	}
	if lang == "" {
		lang = models.DetectLanguage(message)
	}

	var callErr error
	sess, err := s.sessions.update(ctx, sessionID, func(sess *models.Session) error {
		if err := requireAuth(*sess); err != nil {
			return err
		}
		reply, err := s.generate(ctx, llm.Prompt{Instruction: llm.ChatInstruction, Text: message})
		if err == nil {
			reply, err = s.translate(ctx, reply, lang)
		}
		if err != nil {
			callErr = err
			return err
		}
		sess.ChatLog = append(sess.ChatLog,
			models.ChatMessage{Role: models.RoleUser, Text: message},
			models.ChatMessage{Role: models.RoleAssistant, Text: reply},
		)
		sess.ChatLanguage = lang
		sess.Page = models.PageChat
		return nil
	})
	if err != nil {
		if callErr != nil {
			s.record(ctx, sess, models.ActivityChat, "chat failed", callErr, map[string]any{"language": lang})
		}
		return sess, err
	}
	s.record(ctx, sess, models.ActivityChat, "chat reply", nil, map[string]any{"language": lang})
	return sess, nil
}

// ClearChat empties the conversation.
func (s *AssistantService) ClearChat(ctx context.Context, sessionID string) (models.Session, error) {
	return s.sessions.update(ctx, sessionID, func(sess *models.Session) error {
		if err := requireAuth(*sess); err != nil {
			return err
		}
		sess.ChatLog = []models.ChatMessage{}
		sess.ChatLanguage = models.LanguageEnglish
		return nil
	})
}

// TranslateChat rewrites the last assistant reply in lang.
func (s *AssistantService) TranslateChat(ctx context.Context, sessionID string, lang models.Language) (models.Session, error) {
	var callErr error
	sess, err := s.sessions.update(ctx, sessionID, func(sess *models.Session) error {
		if err := requireAuth(*sess); err != nil {
			return err
		}
		last, ok := sess.LastReply()
		if !ok {
			return ErrNothingToTranslate
		}
		out, err := s.translate(ctx, last.Text, lang)
		if err != nil {
			callErr = err
			return err
		}
		sess.ChatLog[len(sess.ChatLog)-1].Text = out
		sess.ChatLanguage = lang
		return nil
	})
	if callErr != nil || err == nil {
		s.record(ctx, sess, models.ActivityTranslate, "chat reply translated", callErr, map[string]any{"language": lang, "panel": "chat"})
	}
	return sess, err
}

// SpeakChat returns MP3 audio of the last assistant reply.
func (s *AssistantService) SpeakChat(ctx context.Context, sessionID string) ([]byte, error) {
	return s.speak(ctx, sessionID, "chat", func(sess models.Session) (string, models.Language, bool) {
		last, ok := sess.LastReply()
		return last.Text, sess.ChatLanguage, ok
	})
}

// Transcript renders the conversation as plain text.
func (s *AssistantService) Transcript(ctx context.Context, sessionID string) (string, error) {
	var b strings.Builder
	err := s.sessions.view(ctx, sessionID, func(sess models.Session) error {
		if err := requireAuth(sess); err != nil {
			return err
		}
		for _, m := range sess.ChatLog {
			who := "User"
			if m.Role == models.RoleAssistant {
				who = "Assistant"
			}
			fmt.Fprintf(&b, "%s: %s\n\n", who, m.Text)
		}
		return nil
	})
	return b.String(), err
}

// AnalyzeImage describes a PNG or JPEG upload. The previous result stays in
// place when anything fails.
func (s *AssistantService) AnalyzeImage(ctx context.Context, sessionID string, data []byte, lang models.Language) (models.Session, error) {
	if len(data) == 0 {
		return models.Session{}, required("file")
	}
	if s.maxImageBytes > 0 && int64(len(data)) > s.maxImageBytes {
		return models.Session{}, &ValidationError{Field: "file", Message: fmt.Sprintf("must be at most %d bytes", s.maxImageBytes)}
	}
	mime := mimetype.Detect(data)
	if !mimetype.EqualsAny(mime.String(), allowedImageTypes...) {
		return models.Session{}, fmt.Errorf("%w: got %s", ErrUnsupportedMedia, mime.String())
	}
	if lang == "" {
		lang = models.LanguageEnglish
	}

	var callErr error
	sess, err := s.sessions.update(ctx, sessionID, func(sess *models.Session) error {
		if err := requireAuth(*sess); err != nil {
			return err
		}
		out, err := s.generate(ctx, llm.Prompt{
			Instruction: llm.ImageInstruction,
			Media:       &llm.Media{MIMEType: mime.String(), Data: data},
		})
		if err == nil {
			out, err = s.translate(ctx, out, lang)
		}
		if err != nil {
			callErr = err
			return err
		}
		sess.ImageResult = out
		sess.ImageLanguage = lang
		sess.Page = models.PageImage
		return nil
	})
	meta := map[string]any{"language": lang, "mime_type": mime.String(), "bytes": len(data)}
	if callErr != nil || err == nil {
		s.record(ctx, sess, models.ActivityImage, "image analyzed", callErr, meta)
	}
	return sess, err
}

// ClearImage drops the last analysis.
func (s *AssistantService) ClearImage(ctx context.Context, sessionID string) (models.Session, error) {
	return s.sessions.update(ctx, sessionID, func(sess *models.Session) error {
		if err := requireAuth(*sess); err != nil {
			return err
		}
		sess.ImageResult = ""
		sess.ImageLanguage = models.LanguageEnglish
		return nil
	})
}

// TranslateImage rewrites the last analysis in lang.
func (s *AssistantService) TranslateImage(ctx context.Context, sessionID string, lang models.Language) (models.Session, error) {
	var callErr error
	sess, err := s.sessions.update(ctx, sessionID, func(sess *models.Session) error {
		if err := requireAuth(*sess); err != nil {
			return err
		}
		if sess.ImageResult == "" {
			return ErrNothingToTranslate
		}
		out, err := s.translate(ctx, sess.ImageResult, lang)
		if err != nil {
			callErr = err
			return err
		}
		sess.ImageResult = out
		sess.ImageLanguage = lang
		return nil
	})
	if callErr != nil || err == nil {
		s.record(ctx, sess, models.ActivityTranslate, "image analysis translated", callErr, map[string]any{"language": lang, "panel": "image"})
	}
	return sess, err
}

// SpeakImage returns MP3 audio of the last analysis.
func (s *AssistantService) SpeakImage(ctx context.Context, sessionID string) ([]byte, error) {
	return s.speak(ctx, sessionID, "image", func(sess models.Session) (string, models.Language, bool) {
		return sess.ImageResult, sess.ImageLanguage, sess.ImageResult != ""
	})
}

// ImageResult returns the last analysis text for download.
func (s *AssistantService) ImageResult(ctx context.Context, sessionID string) (string, error) {
	var out string
	err := s.sessions.view(ctx, sessionID, func(sess models.Session) error {
		if err := requireAuth(sess); err != nil {
			return err
		}
		out = sess.ImageResult
		return nil
	})
	return out, err
}

func (s *AssistantService) speak(ctx context.Context, sessionID, panel string, pick func(models.Session) (string, models.Language, bool)) ([]byte, error) {
	var (
		audio   []byte
		current models.Session
		callErr error
	)
	err := s.sessions.view(ctx, sessionID, func(sess models.Session) error {
		current = sess
		if err := requireAuth(sess); err != nil {
			return err
		}
		text, lang, ok := pick(sess)
		if !ok {
			return ErrNothingToSpeak
		}
		var err error
		audio, err = s.synthesize(ctx, text, lang)
		callErr = err
		return err
	})
	if callErr != nil || err == nil {
		s.record(ctx, current, models.ActivitySpeak, panel+" reply spoken", callErr, map[string]any{"panel": panel, "bytes": len(audio)})
	}
	return audio, err
}
