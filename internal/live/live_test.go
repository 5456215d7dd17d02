package live

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/matthewbaird/intake/internal/event"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func TestManagerExpiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	m := NewManager(time.Hour, 10*time.Minute)
	m.now = clock.now

	s := m.Create()
	assert.Equal(t, clock.t.Add(10*time.Minute), m.Deadline(s))

	clock.t = clock.t.Add(9 * time.Minute)
	require.NotNil(t, m.Get(s.ID))
	m.Touch(s)

	clock.t = clock.t.Add(9 * time.Minute)
	require.NotNil(t, m.Get(s.ID), "touch extends the idle window")

	for range 6 {
		m.Touch(s)
		clock.t = clock.t.Add(8 * time.Minute)
	}
	assert.Equal(t, s.CreatedAt.Add(time.Hour), m.Deadline(s), "max age caps the deadline")
	assert.Nil(t, m.Get(s.ID))
	assert.Zero(t, m.Len())
}

func TestManagerCleanup(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	m := NewManager(time.Hour, 10*time.Minute)
	m.now = clock.now

	old := m.Create()
	clock.t = clock.t.Add(11 * time.Minute)
	fresh := m.Create()

	assert.Equal(t, 1, m.Cleanup())
	assert.Nil(t, m.Get(old.ID))
	assert.NotNil(t, m.Get(fresh.ID))
}

func TestDecode(t *testing.T) {
	type params struct {
		Team string `json:"team"`
	}
	p, err := Decode[params](nil)
	require.NoError(t, err)
	assert.Equal(t, params{}, p)

	p, err = Decode[params](json.RawMessage(`{"team":"Family"}`))
	require.NoError(t, err)
	assert.Equal(t, "Family", p.Team)

	_, err = Decode[params](json.RawMessage(`[1]`))
	assert.Error(t, err)
}

func TestDecodeOntoKeepsDefaults(t *testing.T) {
	type params struct {
		Team string `json:"team"`
		Days int    `json:"days"`
	}
	p := params{Team: "All", Days: 30}
	require.NoError(t, DecodeOnto(nil, &p))
	assert.Equal(t, params{Team: "All", Days: 30}, p)

	require.NoError(t, DecodeOnto(json.RawMessage(`{"days":7}`), &p))
	assert.Equal(t, params{Team: "All", Days: 7}, p)

	assert.Error(t, DecodeOnto(json.RawMessage(`"x"`), &p))
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register(Query{Name: "b"})
	r.Register(Query{Name: "a"})
	assert.Equal(t, []string{"a", "b"}, r.Names())
	_, ok := r.Lookup("c")
	assert.False(t, ok)
}

type envelope struct {
	Type      string          `json:"type"`
	RequestID string          `json:"request_id"`
	Data      json.RawMessage `json:"data"`
}

type client struct {
	t  *testing.T
	ws *websocket.Conn
}

func (c *client) write(typ, id string, data any) {
	c.t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(c.t, err)
	require.NoError(c.t, wsjson.Write(context.Background(), c.ws, ClientMessage{Type: typ, ID: id, Data: raw}))
}

func (c *client) read() envelope {
	c.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	var e envelope
	require.NoError(c.t, wsjson.Read(ctx, c.ws, &e))
	return e
}

func (c *client) result() ResultData {
	c.t.Helper()
	e := c.read()
	require.Equal(c.t, "result", e.Type, string(e.Data))
	var r ResultData
	require.NoError(c.t, json.Unmarshal(e.Data, &r))
	return r
}

func dial(t *testing.T, h *Handler) (*client, func()) {
	t.Helper()
	srv := httptest.NewServer(h)
	ws, _, err := websocket.Dial(context.Background(), "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	return &client{t: t, ws: ws}, func() {
		ws.Close(websocket.StatusNormalClosure, "")
		srv.Close()
	}
}

func countingQuery(calls *atomic.Int64) Query {
	return Query{
		Name:    "invoices.total",
		Watches: []string{event.EntityInvoice, event.EntityPayment},
		Fetch: func(_ context.Context, params json.RawMessage) (any, error) {
			p, err := Decode[struct {
				Team string `json:"team"`
			}](params)
			if err != nil {
				return nil, err
			}
			return map[string]any{"team": p.Team, "calls": calls.Add(1)}, nil
		},
	}
}

func TestHandlerSubscriptionLifecycle(t *testing.T) {
	var calls atomic.Int64
	reg := NewRegistry()
	reg.Register(countingQuery(&calls))
	h := NewHandler(NewManager(time.Hour, time.Hour), reg, nil)

	c, closeAll := dial(t, h)
	defer closeAll()

	hello := c.read()
	require.Equal(t, "session", hello.Type)
	var sess SessionData
	require.NoError(t, json.Unmarshal(hello.Data, &sess))
	assert.NotEmpty(t, sess.SessionID)
	assert.Equal(t, []string{"invoices.total"}, sess.Queries)

	c.write("subscribe", "s1", SubscribeData{Query: "invoices.total", Params: json.RawMessage(`{"team":"Family"}`)})
	r := c.result()
	assert.Equal(t, uint64(1), r.Gen)
	assert.Equal(t, map[string]any{"team": "Family", "calls": float64(1)}, r.Value)

	// A payment event refreshes the subscription with the same params.
	require.NoError(t, h.HandleEvent(context.Background(),
		event.NewRecordsChanged("seed", event.RecordsChangedPayload{EntityType: event.EntityPayment, IDs: []string{"p1"}})))
	r = c.result()
	assert.Equal(t, uint64(2), r.Gen)
	assert.Equal(t, "Family", r.Value.(map[string]any)["team"])

	// An unrelated event does not; the pong arrives next.
	require.NoError(t, h.HandleEvent(context.Background(),
		event.NewAvailabilityChanged("jdoe", event.AvailabilityChangedPayload{UserID: "u1", Current: "Red"})))
	c.write("ping", "p", nil)
	assert.Equal(t, "pong", c.read().Type)

	c.write("update", "s1", UpdateData{Params: json.RawMessage(`{"team":"Criminal"}`)})
	r = c.result()
	assert.Equal(t, uint64(3), r.Gen)
	assert.Equal(t, "Criminal", r.Value.(map[string]any)["team"])

	c.write("subscribe", "s1", SubscribeData{Query: "invoices.total"})
	e := c.read()
	assert.Equal(t, "error", e.Type)
	assert.Contains(t, string(e.Data), CodeDuplicateID)

	c.write("unsubscribe", "s1", nil)
	c.write("update", "s1", UpdateData{})
	e = c.read()
	assert.Equal(t, "error", e.Type)
	assert.Contains(t, string(e.Data), CodeNotFound)

	h.mu.Lock()
	assert.Empty(t, h.subs)
	h.mu.Unlock()
}

func TestHandlerErrors(t *testing.T) {
	reg := NewRegistry()
	reg.Register(Query{
		Name: "broken",
		Fetch: func(context.Context, json.RawMessage) (any, error) {
			return nil, assert.AnError
		},
	})
	h := NewHandler(NewManager(time.Hour, time.Hour), reg, nil)
	c, closeAll := dial(t, h)
	defer closeAll()
	c.read()

	c.write("bogus", "x", nil)
	e := c.read()
	assert.Equal(t, "error", e.Type)
	assert.Contains(t, string(e.Data), CodeUnknownType)

	c.write("subscribe", "x", SubscribeData{Query: "nope"})
	e = c.read()
	assert.Contains(t, string(e.Data), CodeUnknownQuery)

	c.write("subscribe", "y", SubscribeData{Query: "broken"})
	e = c.read()
	assert.Equal(t, "error", e.Type)
	assert.Equal(t, "y", e.RequestID)
	assert.Contains(t, string(e.Data), CodeQueryError)
}

func TestHandlerClosesIdleSession(t *testing.T) {
	h := NewHandler(NewManager(time.Hour, 50*time.Millisecond), NewRegistry(), nil)
	c, closeAll := dial(t, h)
	defer closeAll()
	c.read()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	var e envelope
	err := wsjson.Read(ctx, c.ws, &e)
	require.Error(t, err)
	assert.NoError(t, ctx.Err(), "server closed the connection before the client gave up")
}
