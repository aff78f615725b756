// test/e2e/e2e_test.go
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticket-bot/internal/bot"
	"ticket-bot/internal/catalog"
	"ticket-bot/internal/common/config"
	"ticket-bot/internal/common/database"
	"ticket-bot/internal/common/logger"
	"ticket-bot/internal/common/observability"
	"ticket-bot/internal/intent"
	"ticket-bot/internal/orders"
	"ticket-bot/internal/scenario"
	"ticket-bot/internal/transport"
	"ticket-bot/internal/workers/ticket"
)

// ==========================
// Stack Setup
// ==========================

const (
	scenarioFile = "../../configs/scenarios/ticket.yaml"
	keyPrefix    = "e2e:session:"
	ordersIndex  = "ticket-orders"
)

// Friday 16 October 2026, 10:00 UTC.
var fixedNow = time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC)

type indexedDoc struct {
	path string
	body map[string]interface{}
}

// stack is the whole bot wired the way `serve` wires it, with Redis replaced
// by miniredis, PostgreSQL by sqlmock and Elasticsearch by a recording server.
type stack struct {
	server *httptest.Server
	redis  *miniredis.Miniredis
	sql    sqlmock.Sqlmock
	file   *scenario.File

	mu   sync.Mutex
	docs []indexedDoc
}

func newStack(t *testing.T) *stack {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.NewTestLogger(t)
	clock := func() time.Time { return fixedNow }
	s := &stack{}

	// --- Sessions ---
	s.redis = miniredis.RunT(t)
	rdb := database.NewRedis(config.RedisConfig{Address: s.redis.Addr()})
	t.Cleanup(func() { rdb.Close() })
	store := scenario.NewRedisStore(rdb.Client, keyPrefix, time.Hour)

	// --- Catalog ---
	cat := catalog.NewMemoryCatalog(clock)
	_, err := cat.Seed(context.Background(),
		catalog.Generate(catalog.DefaultSchedule(), fixedNow, catalog.DefaultHorizonDays, time.UTC))
	require.NoError(t, err)

	// --- Order sinks ---
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	s.sql = mock

	es := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var doc map[string]interface{}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &doc)
		s.mu.Lock()
		s.docs = append(s.docs, indexedDoc{path: r.URL.Path, body: doc})
		s.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	}))
	t.Cleanup(es.Close)
	esClient, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{es.URL}})
	require.NoError(t, err)

	recorder := orders.NewRecorder(log,
		orders.NewLogSink(log),
		orders.NewPostgresSink(db),
		orders.NewElasticsearchSink(esClient, ordersIndex),
	)

	// --- Conversation ---
	s.file, err = scenario.LoadFile(scenarioFile)
	require.NoError(t, err)

	handlerCfg := ticket.LoadConfig()
	handlerCfg.Location = time.UTC
	engine, err := scenario.NewEngine(s.file.Scenarios, ticket.NewRegistry(handlerCfg, cat, clock, log), store, recorder, log)
	require.NoError(t, err)

	b := bot.New(engine, intent.NewRouter(s.file.Intents, s.file.DefaultAnswer), s.file.Controls, log)
	loop := bot.NewLoop(b, 16, 5*time.Second, observability.Nop(), log)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(done)
	}()

	s.server = httptest.NewServer(transport.NewHTTPServer(loop, log, rdb).Routes())
	t.Cleanup(func() {
		s.server.Close()
		cancel()
		<-done
	})
	return s
}

type reply struct {
	status int
	Text   string `json:"text"`
	Error  string `json:"error"`
	Code   string `json:"code"`
}

func (s *stack) say(t *testing.T, userID, text string) reply {
	t.Helper()
	body, err := json.Marshal(map[string]string{"userId": userID, "text": text})
	require.NoError(t, err)

	resp, err := http.Post(s.server.URL+"/v1/messages", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var r reply
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&r))
	r.status = resp.StatusCode
	return r
}

func (s *stack) text(t *testing.T, userID, text string) string {
	t.Helper()
	r := s.say(t, userID, text)
	require.Equal(t, http.StatusOK, r.status, "%s: %s", r.Code, r.Error)
	return r.Text
}

func (s *stack) step(n int) scenario.Step {
	def, _ := s.file.Scenario("ticket")
	st, _ := def.Step(n)
	return st
}

// orderUpTo walks a user from the intent to the phone step.
func (s *stack) orderUpTo(t *testing.T, userID string) {
	t.Helper()
	require.Equal(t, s.step(1).Prompt, s.text(t, userID, "/ticket"))
	s.text(t, userID, "москв")
	s.text(t, userID, "екатер")
	s.text(t, userID, "20-10-2026")
	s.text(t, userID, "5")
	s.text(t, userID, "2")
	s.text(t, userID, "у окна")
	require.Equal(t, s.step(8).Prompt, s.text(t, userID, "да"))
}

// ==========================
// End-to-End Tests
// ==========================

func TestE2E_OrderOverHTTP(t *testing.T) {
	s := newStack(t)
	const user = "e2e-1"

	s.sql.ExpectExec(regexp.QuoteMeta("INSERT INTO orders")).WillReturnResult(sqlmock.NewResult(0, 1))

	assert.Equal(t, s.file.DefaultAnswer, s.text(t, user, "Добрый день"))
	assert.False(t, s.redis.Exists(keyPrefix+user))

	s.orderUpTo(t, user)
	assert.True(t, s.redis.Exists(keyPrefix+user))
	assert.True(t, s.redis.TTL(keyPrefix+user) > 0)

	assert.Equal(t, s.step(8).FailureText, s.text(t, user, "позвоните мне"))

	final := s.text(t, user, "+7 916 123-45-67 или +79161234567")
	assert.Contains(t, final, "(+79161234567)")
	assert.False(t, s.redis.Exists(keyPrefix+user))

	assert.NoError(t, s.sql.ExpectationsWereMet())

	s.mu.Lock()
	defer s.mu.Unlock()
	require.Len(t, s.docs, 1)
	doc := s.docs[0]
	assert.True(t, strings.HasPrefix(doc.path, "/"+ordersIndex+"/_doc/"), doc.path)
	assert.Equal(t, user, doc.body["userId"])
	assert.Equal(t, "Москва", doc.body["origin"])
	assert.Equal(t, "Екатеринбург", doc.body["destination"])
	assert.EqualValues(t, 5, doc.body["flightId"])
	assert.EqualValues(t, 2, doc.body["ticketQty"])
	assert.EqualValues(t, 8000, doc.body["total"])
	assert.Equal(t, "+79161234567", doc.body["phone"])
}

func TestE2E_SinkFailureKeepsConversation(t *testing.T) {
	s := newStack(t)
	const user = "e2e-2"

	s.sql.ExpectExec(regexp.QuoteMeta("INSERT INTO orders")).WillReturnError(errors.New("connection refused"))
	s.sql.ExpectExec(regexp.QuoteMeta("INSERT INTO orders")).WillReturnResult(sqlmock.NewResult(0, 1))

	s.orderUpTo(t, user)

	failed := s.say(t, user, "+79161234567")
	assert.Equal(t, http.StatusInternalServerError, failed.status)
	assert.Equal(t, "ORDER_SINK_FAILED", failed.Code)
	assert.True(t, s.redis.Exists(keyPrefix+user))

	final := s.text(t, user, "+79161234567")
	assert.Contains(t, final, "(+79161234567)")
	assert.False(t, s.redis.Exists(keyPrefix+user))
	assert.NoError(t, s.sql.ExpectationsWereMet())

	s.mu.Lock()
	defer s.mu.Unlock()
	require.Len(t, s.docs, 1)
	summary, _ := s.docs[0].body["summary"].(string)
	assert.Equal(t, 1, strings.Count(summary, "Телефон: +79161234567"))
}

func TestE2E_ControlTokensOverWebSocket(t *testing.T) {
	s := newStack(t)

	url := "ws" + strings.TrimPrefix(s.server.URL, "http") + "/v1/chat?userId=e2e-ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	exchange := func(text string) string {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(text)))
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		return string(msg)
	}

	assert.Equal(t, s.step(1).Prompt, exchange("/ticket"))
	assert.True(t, strings.HasPrefix(exchange("санкт"), "Вы ввели Санкт-Петербург.\n"))

	assert.Equal(t, s.step(1).Prompt, exchange("/ticket"))
	assert.True(t, s.redis.Exists(keyPrefix+"e2e-ws"))

	assert.Equal(t, s.file.Controls.QuitAnswer, exchange("/quit"))
	assert.False(t, s.redis.Exists(keyPrefix+"e2e-ws"))

	assert.Equal(t, s.file.DefaultAnswer, exchange("санкт"))
}

func TestE2E_Ready(t *testing.T) {
	s := newStack(t)

	resp, err := http.Get(s.server.URL + "/ready")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	s.redis.Close()

	resp, err = http.Get(s.server.URL + "/ready")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
