package tradehttp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"swingflow/internal/alertrule"
	"swingflow/internal/journal"
	"swingflow/internal/lifecycle"
	"swingflow/internal/notify"
	"swingflow/internal/store/model"
	"swingflow/internal/store/sqlite"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

type testAPI struct {
	engine *gin.Engine
	store  *sqlite.SqliteStore
	router *Router
}

func newTestAPI(t *testing.T, opts ...func(*Router)) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st, err := sqlite.NewSqliteStore(filepath.Join(t.TempDir(), "trades.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	machine := lifecycle.NewMachine(st, lifecycle.Publishers{
		Alerts:   notify.NoopAlertPublisher{},
		Promo:    notify.NoopPromoPublisher{},
		Tracking: notify.NoopTrackingSignal{},
	})
	r := NewRouter(machine, st, nil, nil)
	for _, opt := range opts {
		opt(r)
	}

	engine := gin.New()
	r.Register(engine.Group("/api"))
	return &testAPI{engine: engine, store: st, router: r}
}

func (a *testAPI) seed(t *testing.T, trade *model.TradeModel) {
	t.Helper()
	if trade.Status == "" {
		trade.Status = model.StatusOpen
	}
	require.NoError(t, a.store.GormDB().Create(trade).Error)
}

func (a *testAPI) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func fp(v float64) *float64 { return &v }

func TestHandleEvent_EntryHit(t *testing.T) {
	api := newTestAPI(t)
	api.seed(t, &model.TradeModel{ID: 1, Symbol: "AAPL", Direction: model.DirectionLong, Entry1: fp(100)})

	w := api.do(http.MethodPost, "/api/events", `{
		"eventType": "entry-hit",
		"tradeId": 1,
		"symbol": "AAPL",
		"direction": "Long",
		"data": {"entryLevel": 1, "entryThreshold": 100}
	}`)
	require.Equal(t, http.StatusOK, w.Code)
	body := gjson.Parse(w.Body.String())
	assert.Equal(t, "ok", body.Get("status").String())
	assert.NotEmpty(t, body.Get("eventId").String())

	trade, err := sqlite.NewTradeRepo(api.store.GormDB()).Find(context.Background(), 1)
	require.NoError(t, err)
	assert.NotNil(t, trade.Entry1FilledAt)
}

func TestHandleEvent_CoercesStringNumbers(t *testing.T) {
	api := newTestAPI(t)
	api.seed(t, &model.TradeModel{ID: 7, Symbol: "TSLA", Direction: model.DirectionLong, Entry1: fp(200)})

	// upstream delivery sometimes stringifies ids
	w := api.do(http.MethodPost, "/api/events", `{
		"eventType": "entry-hit",
		"tradeId": "7",
		"symbol": "TSLA",
		"data": {"entryLevel": 1, "entryThreshold": 200}
	}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandleEvent_BadRequests(t *testing.T) {
	api := newTestAPI(t)

	cases := []struct {
		name string
		body string
	}{
		{"not JSON", `{{`},
		{"missing eventType", `{"tradeId": 1, "data": {}}`},
		{"missing tradeId", `{"eventType": "entry-hit", "data": {}}`},
		{"non-positive tradeId", `{"eventType": "entry-hit", "tradeId": 0, "data": {}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := api.do(http.MethodPost, "/api/events", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestHandleEvent_UnknownTradeIs404(t *testing.T) {
	api := newTestAPI(t)
	w := api.do(http.MethodPost, "/api/events", `{
		"eventType": "entry-hit",
		"tradeId": 404,
		"symbol": "AAPL",
		"data": {"entryLevel": 1, "entryThreshold": 100}
	}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleEvent_SchemaValidation(t *testing.T) {
	rulesPath := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(rulesPath, []byte(`rules:
  entry-hit:
    alert_type: entry target
    schema:
      type: object
      required: [entryLevel, entryThreshold]
`), 0o644))
	rules, err := alertrule.NewRegistry(rulesPath)
	require.NoError(t, err)

	api := newTestAPI(t, func(r *Router) { r.Rules = rules })
	api.seed(t, &model.TradeModel{ID: 1, Symbol: "AAPL", Direction: model.DirectionLong, Entry1: fp(100)})

	w := api.do(http.MethodPost, "/api/events", `{
		"eventType": "entry-hit",
		"tradeId": 1,
		"symbol": "AAPL",
		"data": {"entryLevel": 1}
	}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "schema")
}

func TestHandleTradeDetail(t *testing.T) {
	api := newTestAPI(t)
	api.seed(t, &model.TradeModel{ID: 1, Symbol: "AAPL", Direction: model.DirectionLong,
		Entry1: fp(100), Entry2: fp(105), Profit1: fp(103)})

	w := api.do(http.MethodGet, "/api/trades/1", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := gjson.Parse(w.Body.String())
	assert.Equal(t, "AAPL", body.Get("symbol").String())
	assert.Equal(t, "open", body.Get("status").String())
	assert.Equal(t, int64(3), body.Get("entries.#").Int())
	assert.Equal(t, 100.0, body.Get("entries.0.threshold").Float())
	assert.Equal(t, int64(3), body.Get("entries.2.level").Int()) // empty slot still rendered
	assert.Equal(t, gjson.Null, body.Get("entries.2.threshold").Type)
	assert.Equal(t, 103.0, body.Get("profits.0.price").Float())

	w = api.do(http.MethodGet, "/api/trades/404", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(http.MethodGet, "/api/trades/zero", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleTradeReset(t *testing.T) {
	api := newTestAPI(t)
	api.seed(t, &model.TradeModel{ID: 1, Symbol: "AAPL", Direction: model.DirectionLong,
		Entry1: fp(100), Status: model.StatusClosed})

	w := api.do(http.MethodPost, "/api/trades/1/reset", `{"reason": "wrong signal"}`)
	require.Equal(t, http.StatusOK, w.Code)

	trade, err := sqlite.NewTradeRepo(api.store.GormDB()).Find(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, model.StatusOpen, trade.Status)
	assert.Nil(t, trade.Entry1)
	assert.Contains(t, trade.EntryLog, "RESET: wrong signal")

	w = api.do(http.MethodPost, "/api/trades/404/reset", `{"reason": "x"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleRecentEvents(t *testing.T) {
	t.Run("journal disabled", func(t *testing.T) {
		api := newTestAPI(t)
		w := api.do(http.MethodGet, "/api/events/recent", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("journal enabled", func(t *testing.T) {
		jr, err := journal.NewStore(filepath.Join(t.TempDir(), "journal.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = jr.Close() })
		require.NoError(t, jr.Record(context.Background(), journal.Entry{
			EventID: "evt-1", EventType: "entry-hit", Symbol: "AAPL", TradeID: 1, Outcome: journal.OutcomeOK,
		}))

		api := newTestAPI(t, func(r *Router) { r.Journal = jr })
		w := api.do(http.MethodGet, "/api/events/recent?limit=10", "")
		require.Equal(t, http.StatusOK, w.Code)
		body := gjson.Parse(w.Body.String())
		assert.Equal(t, int64(1), body.Get("events.#").Int())
	})
}
