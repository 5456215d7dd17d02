package live

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/matthewbaird/intake/internal/event"
	"github.com/matthewbaird/intake/internal/livequery"
)

// Handler manages WebSocket connections for live dashboards. It is also an
// eventbus handler: events refresh the subscriptions that depend on them.
type Handler struct {
	sessions *Manager
	queries  *Registry
	gauge    prometheus.Gauge

	mu   sync.Mutex
	subs map[*subscription]struct{}
}

type subscription struct {
	id      string
	query   *Query
	tracker *livequery.Tracker[json.RawMessage, any]
	stop    func()
}

// NewHandler creates a WebSocket handler. gauge, when non-nil, tracks open
// sessions.
func NewHandler(sessions *Manager, queries *Registry, gauge prometheus.Gauge) *Handler {
	return &Handler{
		sessions: sessions,
		queries:  queries,
		gauge:    gauge,
		subs:     make(map[*subscription]struct{}),
	}
}

// HandleEvent refreshes every subscription whose query watches evt.
func (h *Handler) HandleEvent(_ context.Context, evt event.DomainEvent) error {
	h.mu.Lock()
	var stale []*subscription
	for s := range h.subs {
		if s.query.dependsOn(evt) {
			stale = append(stale, s)
		}
	}
	h.mu.Unlock()
	for _, s := range stale {
		s.tracker.Refresh()
	}
	return nil
}

// ServeHTTP upgrades to WebSocket and runs the message loop.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		log.Printf("live: websocket accept: %v", err)
		return
	}
	defer ws.CloseNow()

	sess := h.sessions.Create()
	defer h.sessions.Remove(sess.ID)
	if h.gauge != nil {
		h.gauge.Inc()
		defer h.gauge.Dec()
	}

	ctx, cancel := context.WithCancel(r.Context())
	c := &conn{h: h, ws: ws, ctx: ctx, subs: make(map[string]*subscription)}
	defer func() {
		cancel()
		c.closeAll()
	}()

	c.send(ServerMessage{
		Type: "session",
		Data: SessionData{
			SessionID: sess.ID,
			Queries:   h.queries.Names(),
			ExpiresAt: h.sessions.Deadline(sess).UTC().Format(time.RFC3339),
		},
	})

	for {
		var msg ClientMessage
		readCtx, cancelRead := context.WithDeadline(ctx, h.sessions.Deadline(sess))
		err := wsjson.Read(readCtx, ws, &msg)
		expired := errors.Is(readCtx.Err(), context.DeadlineExceeded)
		cancelRead()
		if err != nil {
			switch {
			case expired:
				log.Printf("live: session %s expired", sess.ID)
				ws.Close(websocket.StatusPolicyViolation, "session expired")
			case websocket.CloseStatus(err) != -1:
				log.Printf("live: connection closed: %v", websocket.CloseStatus(err))
			}
			return
		}
		if h.sessions.Get(sess.ID) == nil {
			ws.Close(websocket.StatusPolicyViolation, "session expired")
			return
		}
		h.sessions.Touch(sess)

		switch msg.Type {
		case "subscribe":
			c.subscribe(msg)
		case "update":
			c.update(msg)
		case "unsubscribe":
			c.unsubscribe(msg.ID)
		case "ping":
			c.send(ServerMessage{Type: "pong", RequestID: msg.ID})
		default:
			c.sendError(msg.ID, CodeUnknownType, fmt.Sprintf("unknown message type: %s", msg.Type))
		}
	}
}

func (h *Handler) track(s *subscription) {
	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()
}

func (h *Handler) untrack(s *subscription) {
	h.mu.Lock()
	delete(h.subs, s)
	h.mu.Unlock()
}

// conn is one websocket connection and its subscriptions, keyed by the
// client-assigned ID. Only the read loop mutates subs.
type conn struct {
	h    *Handler
	ws   *websocket.Conn
	ctx  context.Context
	subs map[string]*subscription
}

func (c *conn) subscribe(msg ClientMessage) {
	var data SubscribeData
	if err := json.Unmarshal(msg.Data, &data); err != nil || msg.ID == "" {
		c.sendError(msg.ID, CodeInvalidData, "invalid subscribe data")
		return
	}
	q, ok := c.h.queries.Lookup(data.Query)
	if !ok {
		c.sendError(msg.ID, CodeUnknownQuery, fmt.Sprintf("unknown query: %s", data.Query))
		return
	}
	if _, dup := c.subs[msg.ID]; dup {
		c.sendError(msg.ID, CodeDuplicateID, fmt.Sprintf("subscription %s already exists", msg.ID))
		return
	}

	id := msg.ID
	t := livequery.New(c.ctx, livequery.Fetch[json.RawMessage, any](q.Fetch))
	s := &subscription{id: id, query: q, tracker: t}
	s.stop = t.Subscribe(func(res livequery.Result[any]) {
		if res.Err != nil {
			c.sendError(id, CodeQueryError, res.Err.Error())
			return
		}
		c.send(ServerMessage{
			Type:      "result",
			RequestID: id,
			Data:      ResultData{Query: q.Name, Gen: res.Gen, Value: res.Value},
		})
	})
	c.subs[id] = s
	c.h.track(s)
	t.Set(data.Params)
}

func (c *conn) update(msg ClientMessage) {
	s, ok := c.subs[msg.ID]
	if !ok {
		c.sendError(msg.ID, CodeNotFound, fmt.Sprintf("no subscription %s", msg.ID))
		return
	}
	var data UpdateData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		c.sendError(msg.ID, CodeInvalidData, "invalid update data")
		return
	}
	s.tracker.Set(data.Params)
}

func (c *conn) unsubscribe(id string) {
	s, ok := c.subs[id]
	if !ok {
		c.sendError(id, CodeNotFound, fmt.Sprintf("no subscription %s", id))
		return
	}
	delete(c.subs, id)
	c.release(s)
}

func (c *conn) release(s *subscription) {
	c.h.untrack(s)
	s.stop()
	s.tracker.Close()
}

func (c *conn) closeAll() {
	for id, s := range c.subs {
		delete(c.subs, id)
		c.release(s)
	}
}

func (c *conn) send(msg ServerMessage) {
	if err := wsjson.Write(c.ctx, c.ws, msg); err != nil && c.ctx.Err() == nil {
		log.Printf("live: write error: %v", err)
	}
}

func (c *conn) sendError(requestID, code, message string) {
	c.send(ServerMessage{
		Type:      "error",
		RequestID: requestID,
		Data: ErrorData{
			Code:    code,
			Message: message,
		},
	})
}
