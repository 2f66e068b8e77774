package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"mediscan/internal/llm"
	"mediscan/internal/models"
	"mediscan/internal/repository"

	"github.com/spf13/afero"
)

// memSessions is an in-memory repository.SessionRepo.
type memSessions struct {
	mu      sync.Mutex
	rows    map[string]models.Session
	saveErr error
	saves   int
}

func newMemSessions() *memSessions {
	return &memSessions{rows: map[string]models.Session{}}
}

func (m *memSessions) Save(ctx context.Context, s models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	s.ChatLog = append([]models.ChatMessage(nil), s.ChatLog...)
	m.rows[s.ID] = s
	m.saves++
	return nil
}

func (m *memSessions) Load(ctx context.Context, id string) (models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.rows[id]
	if !ok {
		return models.Session{}, nil
	}
	s.ChatLog = append([]models.ChatMessage(nil), s.ChatLog...)
	return s, nil
}

func (m *memSessions) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

func (m *memSessions) DeleteIdle(ctx context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, s := range m.rows {
		if s.UpdatedAt.Before(before) {
			delete(m.rows, id)
			n++
		}
	}
	return n, nil
}

// memActivity is an in-memory repository.ActivityRepo.
type memActivity struct {
	mu        sync.Mutex
	entries   []models.Activity
	lastQuery repository.ActivityQuery
	appendErr error
}

func (m *memActivity) Append(ctx context.Context, a models.Activity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendErr != nil {
		return m.appendErr
	}
	m.entries = append(m.entries, a)
	return nil
}

func (m *memActivity) List(ctx context.Context, f repository.ActivityQuery) ([]models.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastQuery = f
	return append([]models.Activity(nil), m.entries...), nil
}

func (m *memActivity) types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.entries))
	for _, a := range m.entries {
		out = append(out, a.Type)
	}
	return out
}

// stubGenerator answers with a fixed reply or error and records prompts.
type stubGenerator struct {
	mu      sync.Mutex
	reply   string
	err     error
	block   bool
	prompts []llm.Prompt
}

func (g *stubGenerator) Generate(ctx context.Context, p llm.Prompt) (string, error) {
	g.mu.Lock()
	g.prompts = append(g.prompts, p)
	reply, err, block := g.reply, g.err, g.block
	g.mu.Unlock()
	if block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return reply, err
}

// stubTranslator prefixes text with the language name.
type stubTranslator struct {
	err   error
	calls int
}

func (t *stubTranslator) Translate(ctx context.Context, text string, lang models.Language) (string, error) {
	t.calls++
	if t.err != nil {
		return "", t.err
	}
	if lang.IsEnglish() {
		return text, nil
	}
	return "[" + string(lang) + "] " + text, nil
}

type stubSpeech struct {
	audio    []byte
	err      error
	lastText string
	lastLang string
}

func (s *stubSpeech) Synthesize(ctx context.Context, text, lang string) ([]byte, error) {
	s.lastText, s.lastLang = text, lang
	if s.err != nil {
		return nil, s.err
	}
	return s.audio, nil
}

var errBoom = errors.New("boom")

type fixture struct {
	sessions   *memSessions
	activity   *memActivity
	creds      *repository.CredentialsCSV
	generator  *stubGenerator
	translator *stubTranslator
	speech     *stubSpeech
	svc        *Service
}

func newFixture() *fixture {
	f := &fixture{
		sessions:   newMemSessions(),
		activity:   &memActivity{},
		creds:      repository.NewCredentialsCSV(afero.NewMemMapFs(), "users.csv", nil),
		generator:  &stubGenerator{reply: "Drink water and rest."},
		translator: &stubTranslator{},
		speech:     &stubSpeech{audio: []byte("ID3-mp3")},
	}
	repos := &repository.Repository{Sessions: f.sessions, Activity: f.activity, Credentials: f.creds}
	f.svc = NewService(repos, Collaborators{
		Generator:  f.generator,
		Translator: f.translator,
		Speech:     f.speech,
	}, Options{
		SigningKey:      "test-signing-key",
		SessionTTL:      time.Hour,
		GenerateTimeout: time.Second,
		SpeechTimeout:   time.Second,
		MaxUploadBytes:  1 << 20,
	}, nil)
	return f
}

// loggedIn returns the ID of an authenticated session for alice.
func (f *fixture) loggedIn(ctx context.Context) string {
	if _, err := f.creds.Register("alice", "pw1", "a@x.com"); err != nil {
		panic(err)
	}
	_, sess, err := f.svc.NewSession(ctx)
	if err != nil {
		panic(err)
	}
	if _, err := f.svc.SignIn(ctx, sess.ID, "alice", "pw1"); err != nil {
		panic(err)
	}
	return sess.ID
}
