package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticket-bot/internal/bot"
	"ticket-bot/internal/common/database"
	apperrors "ticket-bot/internal/common/errors"
	"ticket-bot/internal/common/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// echoLoop answers "<user>: <text>" and fails on the text "fail".
type echoLoop struct {
	mu     sync.Mutex
	events []bot.Event
}

func (l *echoLoop) Submit(_ context.Context, ev bot.Event) bot.Result {
	l.mu.Lock()
	l.events = append(l.events, ev)
	l.mu.Unlock()

	if ev.Text == "fail" {
		return bot.Result{UserID: ev.UserID, Err: apperrors.New(apperrors.ErrCodeCatalogQueryFailed, "db down")}
	}
	return bot.Result{UserID: ev.UserID, Text: ev.UserID + ": " + ev.Text}
}

type stubPinger struct {
	name string
	err  error
}

func (p stubPinger) Name() string               { return p.name }
func (p stubPinger) Ping(context.Context) error { return p.err }

func newServer(t *testing.T, deps ...database.Pinger) (*HTTPServer, *echoLoop) {
	t.Helper()
	loop := &echoLoop{}
	return NewHTTPServer(loop, logger.NewTestLogger(t), deps...), loop
}

func postMessage(t *testing.T, router http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/messages", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHTTPServer_Message(t *testing.T) {
	srv, loop := newServer(t)
	router := srv.Routes()

	w := postMessage(t, router, `{"userId":"42","text":"привет"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp messageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "42: привет", resp.Text)
	assert.Equal(t, []bot.Event{{UserID: "42", Text: "привет"}}, loop.events)
}

func TestHTTPServer_MessageFailed(t *testing.T) {
	srv, _ := newServer(t)

	w := postMessage(t, srv.Routes(), `{"userId":"42","text":"fail"}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "CATALOG_QUERY_FAILED", resp.Code)
	assert.NotEmpty(t, resp.Error)
	assert.True(t, resp.Retryable)
}

func TestHTTPServer_MessageBadRequest(t *testing.T) {
	srv, loop := newServer(t)
	router := srv.Routes()

	for _, body := range []string{`{"text":"hi"}`, `not json`} {
		w := postMessage(t, router, body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
	assert.Empty(t, loop.events)
}

func TestHTTPServer_Health(t *testing.T) {
	srv, _ := newServer(t)

	w := httptest.NewRecorder()
	srv.Routes().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"healthy"`)
}

func TestHTTPServer_Ready(t *testing.T) {
	tests := []struct {
		name   string
		deps   []database.Pinger
		status int
		body   string
	}{
		{name: "no deps", status: http.StatusOK, body: `"ready"`},
		{name: "all up", deps: []database.Pinger{stubPinger{name: "redis"}}, status: http.StatusOK, body: `"ready"`},
		{
			name:   "one down",
			deps:   []database.Pinger{stubPinger{name: "redis"}, stubPinger{name: "postgres", err: errors.New("refused")}},
			status: http.StatusServiceUnavailable,
			body:   `"postgres":"refused"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newServer(t, tt.deps...)

			w := httptest.NewRecorder()
			srv.Routes().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.body)
		})
	}
}

func TestHTTPServer_Metrics(t *testing.T) {
	srv, _ := newServer(t)

	w := httptest.NewRecorder()
	srv.Routes().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func dialChat(t *testing.T, ts *httptest.Server, query string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/chat" + query
	return websocket.DefaultDialer.Dial(url, nil)
}

func TestHTTPServer_Chat(t *testing.T) {
	srv, _ := newServer(t)
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	conn, _, err := dialChat(t, ts, "?userId=7")
	require.NoError(t, err)
	defer conn.Close()

	exchange := func(text string) string {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(text)))
		_ = conn.SetReadDeadline(time.Now().Add(time.Second))
		kind, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		require.Equal(t, websocket.TextMessage, kind)
		return string(msg)
	}

	assert.Equal(t, "7: /ticket", exchange("/ticket"))
	assert.Equal(t, "7: москва", exchange("москва"))
	assert.Equal(t, apperrors.New(apperrors.ErrCodeCatalogQueryFailed, "").Message, exchange("fail"))
}

func TestHTTPServer_ChatRequiresUser(t *testing.T) {
	srv, _ := newServer(t)
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	_, resp, err := dialChat(t, ts, "")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestConsole_Run(t *testing.T) {
	loop := &echoLoop{}
	in := strings.NewReader("привет\n\n   \n/ticket\nfail\n")
	var out bytes.Buffer

	err := NewConsole(loop, "local", in, &out).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []bot.Event{
		{UserID: "local", Text: "привет"},
		{UserID: "local", Text: "/ticket"},
		{UserID: "local", Text: "fail"},
	}, loop.events)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "local: привет", lines[0])
	assert.Equal(t, "local: /ticket", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "[CATALOG_QUERY_FAILED] "))
}

func TestConsole_StopsOnCancelledContext(t *testing.T) {
	loop := &echoLoop{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewConsole(loop, "local", strings.NewReader("a\nb\n"), &bytes.Buffer{}).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, loop.events)
}
