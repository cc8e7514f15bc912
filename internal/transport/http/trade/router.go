package tradehttp

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"swingflow/internal/alertrule"
	"swingflow/internal/journal"
	"swingflow/internal/lifecycle"
	"swingflow/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

// Router wires the ingest endpoint and trade queries.
type Router struct {
	Machine *lifecycle.Machine
	Store   store.Store
	Journal *journal.Store
	Rules   *alertrule.Registry
}

func NewRouter(m *lifecycle.Machine, st store.Store, jr *journal.Store, rules *alertrule.Registry) *Router {
	return &Router{Machine: m, Store: st, Journal: jr, Rules: rules}
}

// Register mounts the routes under the given group.
func (r *Router) Register(group *gin.RouterGroup) {
	if group == nil {
		return
	}
	group.POST("/events", r.handleEvent)
	group.GET("/events/recent", r.handleRecentEvents)
	group.GET("/trades/:id", r.handleTradeDetail)
	group.POST("/trades/:id/reset", r.handleTradeReset)
}

// handleEvent ingests one event envelope. The delivery side may present
// numbers as strings, so the envelope is sniffed leniently before the
// typed payload decode happens inside the handler.
func (r *Router) handleEvent(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reading body failed"})
		return
	}
	if !gjson.ValidBytes(raw) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body is not valid JSON"})
		return
	}
	doc := gjson.ParseBytes(raw)
	evtType := doc.Get("eventType").String()
	if evtType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "eventType is required"})
		return
	}
	tradeID := doc.Get("tradeId").Int()
	if tradeID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tradeId is required"})
		return
	}
	data := doc.Get("data").Raw
	if data == "" {
		data = "{}"
	}
	if r.Rules != nil {
		if err := r.Rules.ValidatePayload(evtType, []byte(data)); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	id := doc.Get("id").String()
	if id == "" {
		id = uuid.NewString()
	}
	env := lifecycle.EventEnvelope{
		ID:        id,
		Type:      lifecycle.EventType(evtType),
		Symbol:    doc.Get("symbol").String(),
		TradeID:   tradeID,
		Direction: doc.Get("direction").String(),
		Data:      json.RawMessage(data),
		CreatedAt: time.Now(),
	}
	if err := r.Machine.Process(c.Request.Context(), env); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrTradeNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error(), "eventId": id})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "eventId": id})
}

func (r *Router) handleRecentEvents(c *gin.Context) {
	if r.Journal == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "event journal disabled"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	entries, err := r.Journal.Recent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": entries})
}

func (r *Router) handleTradeDetail(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid trade id"})
		return
	}
	view, err := r.loadTradeView(c, id)
	if err != nil {
		if errors.Is(err, store.ErrTradeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "trade not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, view)
}

func (r *Router) handleTradeReset(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid trade id"})
		return
	}
	var body struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reset body"})
		return
	}
	view, err := r.loadTradeView(c, id)
	if err != nil {
		if errors.Is(err, store.ErrTradeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "trade not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	data, _ := json.Marshal(lifecycle.ResetPayload{Reason: body.Reason})
	env := lifecycle.EventEnvelope{
		ID:        uuid.NewString(),
		Type:      lifecycle.EvtReset,
		Symbol:    view.Symbol,
		TradeID:   id,
		Direction: view.Direction,
		Data:      data,
		CreatedAt: time.Now(),
	}
	if err := r.Machine.Process(c.Request.Context(), env); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
