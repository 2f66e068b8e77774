package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mediscan/internal/models"
	"mediscan/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	token    string
	session  models.Session
	err      error
	parseID  string
	parseErr error

	lastParseToken string
	lastSignUp     service.SignUpInput
	lastUsername   string
	lastPassword   string
	lastPage       models.Page
	calls          []string
}

func (m *mockAuth) NewSession(ctx context.Context) (string, models.Session, error) {
	m.calls = append(m.calls, "NewSession")
	return m.token, m.session, m.err
}
func (m *mockAuth) ParseToken(token string) (string, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}
func (m *mockAuth) Session(ctx context.Context, id string) (models.Session, error) {
	m.calls = append(m.calls, "Session")
	return m.session, m.err
}
func (m *mockAuth) ShowSignUp(ctx context.Context, id string) (models.Session, error) {
	m.calls = append(m.calls, "ShowSignUp")
	return m.session, m.err
}
func (m *mockAuth) ShowLogin(ctx context.Context, id string) (models.Session, error) {
	m.calls = append(m.calls, "ShowLogin")
	return m.session, m.err
}
func (m *mockAuth) SignUp(ctx context.Context, id string, in service.SignUpInput) (models.Session, error) {
	m.calls = append(m.calls, "SignUp")
	m.lastSignUp = in
	return m.session, m.err
}
func (m *mockAuth) SignIn(ctx context.Context, id, username, password string) (models.Session, error) {
	m.calls = append(m.calls, "SignIn")
	m.lastUsername, m.lastPassword = username, password
	return m.session, m.err
}
func (m *mockAuth) Logout(ctx context.Context, id string) (models.Session, error) {
	m.calls = append(m.calls, "Logout")
	return m.session, m.err
}
func (m *mockAuth) Navigate(ctx context.Context, id string, page models.Page) (models.Session, error) {
	m.calls = append(m.calls, "Navigate")
	m.lastPage = page
	return m.session, m.err
}

type mockAssistant struct {
	session models.Session
	audio   []byte
	text    string
	err     error

	lastSessionID string
	lastMessage   string
	lastLang      models.Language
	lastImage     []byte
	calls         []string
}

func (m *mockAssistant) record(name, id string) {
	m.calls = append(m.calls, name)
	m.lastSessionID = id
}

func (m *mockAssistant) Chat(ctx context.Context, id, message string, lang models.Language) (models.Session, error) {
	m.record("Chat", id)
	m.lastMessage, m.lastLang = message, lang
	return m.session, m.err
}
func (m *mockAssistant) ClearChat(ctx context.Context, id string) (models.Session, error) {
	m.record("ClearChat", id)
	return m.session, m.err
}
func (m *mockAssistant) TranslateChat(ctx context.Context, id string, lang models.Language) (models.Session, error) {
	m.record("TranslateChat", id)
	m.lastLang = lang
	return m.session, m.err
}
func (m *mockAssistant) SpeakChat(ctx context.Context, id string) ([]byte, error) {
	m.record("SpeakChat", id)
	return m.audio, m.err
}
func (m *mockAssistant) Transcript(ctx context.Context, id string) (string, error) {
	m.record("Transcript", id)
	return m.text, m.err
}
func (m *mockAssistant) AnalyzeImage(ctx context.Context, id string, data []byte, lang models.Language) (models.Session, error) {
	m.record("AnalyzeImage", id)
	m.lastImage, m.lastLang = data, lang
	return m.session, m.err
}
func (m *mockAssistant) ClearImage(ctx context.Context, id string) (models.Session, error) {
	m.record("ClearImage", id)
	return m.session, m.err
}
func (m *mockAssistant) TranslateImage(ctx context.Context, id string, lang models.Language) (models.Session, error) {
	m.record("TranslateImage", id)
	m.lastLang = lang
	return m.session, m.err
}
func (m *mockAssistant) SpeakImage(ctx context.Context, id string) ([]byte, error) {
	m.record("SpeakImage", id)
	return m.audio, m.err
}
func (m *mockAssistant) ImageResult(ctx context.Context, id string) (string, error) {
	m.record("ImageResult", id)
	return m.text, m.err
}

type mockRisk struct {
	resp        models.RiskAssessment
	err         error
	lastAge     int
	lastGlucose int
	calls       int
}

func (m *mockRisk) Predict(ctx context.Context, id string, age, glucose int) (models.RiskAssessment, error) {
	m.calls++
	m.lastAge, m.lastGlucose = age, glucose
	return m.resp, m.err
}

type mockActivityLog struct {
	resp       []models.Activity
	err        error
	lastFilter service.LogFilter
	calls      int
}

func (m *mockActivityLog) List(ctx context.Context, f service.LogFilter) ([]models.Activity, error) {
	m.calls++
	m.lastFilter = f
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

var (
	testNow = time.Date(2025, 8, 27, 15, 4, 5, 0, time.UTC)
	errBoom = errors.New("boom")
)

func newTestRouter(s *service.Service, opts ...Option) *gin.Engine {
	h := NewHandler(s, nil, opts...)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

func loggedInSession() models.Session {
	s := models.NewSession("sess-1", testNow)
	s.Authenticated = true
	s.Username = "alice"
	s.Page = models.PageHome
	return s
}

func doRequest(r http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vv := range authHeader(token) {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) (string, string) {
	t.Helper()
	var out struct {
		Error string `json:"error"`
		Field string `json:"field"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal error body %q: %v", w.Body.String(), err)
	}
	return out.Error, out.Field
}
