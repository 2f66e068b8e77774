package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"mediscan/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

func TestParseInterval(t *testing.T) {
	h := NewHandler(&service.Service{}, nil)

	cases := []struct {
		name string
		u    string
		want time.Duration
	}{
		{"default_when_missing", "/ws", 1 * time.Second},
		{"interval_string_valid", "/ws?interval=200ms", 200 * time.Millisecond},
		{"interval_ms_valid", "/ws?interval_ms=150", 150 * time.Millisecond},
		{"interval_too_large", "/ws?interval=20s", 1 * time.Second},
		{"interval_ms_too_large", "/ws?interval_ms=20000", 1 * time.Second},
		{"interval_invalid_string", "/ws?interval=bogus", 1 * time.Second},
		{"both_present_interval_wins", "/ws?interval=2s&interval_ms=150", 2 * time.Second},
		{"both_present_invalid_interval_ms_used", "/ws?interval=bogus&interval_ms=250", 250 * time.Millisecond},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, tc.u, nil)
			if got := h.parseInterval(c); got != tc.want {
				t.Fatalf("got %v, want %v for %s", got, tc.want, tc.u)
			}
		})
	}
}

func TestCheckOrigin(t *testing.T) {
	h := NewHandler(&service.Service{}, nil, WithAllowedOrigins("https://app.example.com"))

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	if !h.checkOrigin(req) {
		t.Fatal("requests without Origin must pass")
	}
	req.Header.Set("Origin", "https://app.example.com")
	if !h.checkOrigin(req) {
		t.Fatal("allowed origin rejected")
	}
	req.Header.Set("Origin", "https://evil.example.com")
	if h.checkOrigin(req) {
		t.Fatal("foreign origin accepted")
	}
}

type wsTestEnvelope struct {
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

func dialSessionStream(t *testing.T, s *service.Service) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(newTestRouter(s))
	t.Cleanup(srv.Close)

	u, _ := url.Parse(srv.URL)
	u.Scheme = "ws"
	u.Path = "/ws"
	q := u.Query()
	q.Set("token", "tok")
	q.Set("interval_ms", "20")
	u.RawQuery = q.Encode()

	dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
	conn, _, err := dialer.Dial(u.String(), nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestWebSocket_SessionStream(t *testing.T) {
	auth := &mockAuth{parseID: "sess-1", session: loggedInSession()}
	conn := dialSessionStream(t, &service.Service{Authorization: auth})

	for i := 0; i < 2; i++ {
		_ = conn.SetReadDeadline(time.Now().Add(time.Second))
		var env wsTestEnvelope
		if err := conn.ReadJSON(&env); err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		if env.Type != "session" {
			t.Fatalf("bad envelope: %+v", env)
		}
		var snap SessionResponse
		if err := json.Unmarshal(env.Data, &snap); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if snap.Session.Username != "alice" || snap.Session.ID != "sess-1" {
			t.Fatalf("unexpected snapshot: %+v", snap)
		}
	}
}

func TestWebSocket_SessionGone_SendsErrorAndCloses(t *testing.T) {
	auth := &mockAuth{parseID: "sess-1", err: service.ErrSessionNotFound}
	conn := dialSessionStream(t, &service.Service{Authorization: auth})

	_ = conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
	var env wsTestEnvelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read: %v", err)
	}
	if env.Type != "error" || env.Error == "" {
		t.Fatalf("expected error envelope, got %+v", env)
	}
	var raw json.RawMessage
	if err := conn.ReadJSON(&raw); err == nil {
		t.Fatalf("expected read error (closed), got message: %s", string(raw))
	}
}

func TestWebSocket_RequiresToken(t *testing.T) {
	srv := httptest.NewServer(newTestRouter(&service.Service{Authorization: &mockAuth{}}))
	defer srv.Close()

	u, _ := url.Parse(srv.URL)
	u.Scheme = "ws"
	u.Path = "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err == nil {
		t.Fatal("expected handshake failure without token")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %+v", resp)
	}
}
