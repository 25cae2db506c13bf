// Package cskh implements the live operator hand-off: a single operator
// websocket on one side, per-session customer websockets on the other, with
// the hub relaying messages between them.
//
// Message flow is asymmetric on purpose: operator replies sent before the
// customer's socket connects are queued and flushed on connect, while
// customer messages sent with no operator online are dropped (the customer
// already got the transfer notice and the operator sees the first message in
// the hand-off payload).
package cskh

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/hidemium/supportbot/internal/log"
	"github.com/hidemium/supportbot/internal/reply"
)

// writeTimeout bounds every socket write.
const writeTimeout = 5 * time.Second

// Event is the JSON frame exchanged on both sockets.
type Event struct {
	Type      string `json:"type"` // new_customer, customer_connected, customer_disconnected, message, reply, count
	SessionID string `json:"session_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Content   string `json:"content,omitempty"`
	Count     int    `json:"count,omitempty"`
}

// Handoff is what the chat endpoint returns when a transfer starts.
type Handoff struct {
	SessionID string
	Response  string
	Mode      string
}

// conn is the socket surface the hub needs; *websocket.Conn satisfies it and
// tests substitute fakes.
type conn interface {
	Read(ctx context.Context) (websocket.MessageType, []byte, error)
	Write(ctx context.Context, typ websocket.MessageType, data []byte) error
	Close(code websocket.StatusCode, reason string) error
	CloseNow() error
}

// customer tracks one transferred session.
type customer struct {
	ws           conn
	name         string
	firstMessage string
	confirmed    bool
	queued       []Event // operator replies awaiting the customer socket
}

// Hub relays between the operator socket and customer sockets.
type Hub struct {
	logger log.Logger

	mu        sync.Mutex
	operator  conn
	customers map[string]*customer
}

// NewHub returns an empty hub.
func NewHub(logger log.Logger) *Hub {
	return &Hub{
		logger:    logger,
		customers: make(map[string]*customer),
	}
}

// Transfer starts a live hand-off for a new customer. It registers the
// session, notifies the operator if one is online, and returns the payload
// the chat endpoint sends back so the client can open its customer socket.
func (h *Hub) Transfer(ctx context.Context, name, firstMessage string) Handoff {
	id := uuid.New().String()
	sessionID := id[len(id)-8:]

	h.mu.Lock()
	h.customers[sessionID] = &customer{name: name, firstMessage: firstMessage}
	op := h.operator
	h.mu.Unlock()

	if op != nil {
		h.send(ctx, op, Event{
			Type:      "new_customer",
			SessionID: sessionID,
			Name:      name,
			Content:   firstMessage,
		})
	}

	h.logger.Info("cskh transfer started", "session_id", sessionID, "operator_online", op != nil)
	return Handoff{
		SessionID: sessionID,
		Response:  reply.TransferNotice,
		Mode:      "cskh",
	}
}

// WaitingCount reports sessions that transferred but have not connected yet.
func (h *Hub) WaitingCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, c := range h.customers {
		if !c.confirmed {
			n++
		}
	}
	return n
}

func (h *Hub) send(ctx context.Context, ws conn, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("marshal event", "error", err)
		return
	}
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	if err := ws.Write(wctx, websocket.MessageText, data); err != nil {
		h.logger.Warn("socket write failed", "type", ev.Type, "error", err)
	}
}

// RunOperator owns the operator socket until it disconnects. A second
// operator connection replaces the first.
func (h *Hub) RunOperator(ctx context.Context, ws conn) {
	h.mu.Lock()
	if h.operator != nil {
		h.operator.Close(websocket.StatusPolicyViolation, "replaced by new operator connection")
	}
	h.operator = ws
	pending := make([]Event, 0, len(h.customers))
	for id, c := range h.customers {
		pending = append(pending, Event{
			Type:      "new_customer",
			SessionID: id,
			Name:      c.name,
			Content:   c.firstMessage,
		})
	}
	h.mu.Unlock()

	h.logger.Info("operator connected", "pending_customers", len(pending))
	h.send(ctx, ws, Event{Type: "count", Count: len(pending)})
	for _, ev := range pending {
		h.send(ctx, ws, ev)
	}

	defer func() {
		h.mu.Lock()
		replaced := h.operator != ws
		if !replaced {
			h.operator = nil
		}
		var connected []conn
		for _, c := range h.customers {
			if c.confirmed {
				connected = append(connected, c.ws)
			}
		}
		h.mu.Unlock()
		ws.CloseNow()

		// The request context is gone by the time the socket drops.
		if !replaced {
			notifyCtx := context.WithoutCancel(ctx)
			for _, cw := range connected {
				h.send(notifyCtx, cw, Event{Type: "operator_disconnected"})
			}
		}
		h.logger.Info("operator disconnected")
	}()

	for {
		_, data, err := ws.Read(ctx)
		if err != nil {
			return
		}
		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			h.logger.Warn("bad operator frame", "error", err)
			continue
		}
		h.deliverToCustomer(ctx, ev)
	}
}

// deliverToCustomer routes an operator reply. Replies for sessions whose
// socket has not connected yet are queued in order and flushed on connect.
func (h *Hub) deliverToCustomer(ctx context.Context, ev Event) {
	if ev.Type != "reply" {
		return
	}

	h.mu.Lock()
	c, ok := h.customers[ev.SessionID]
	if !ok {
		h.mu.Unlock()
		h.logger.Warn("reply for unknown session", "session_id", ev.SessionID)
		return
	}
	if !c.confirmed {
		c.queued = append(c.queued, ev)
		h.mu.Unlock()
		return
	}
	ws := c.ws
	h.mu.Unlock()

	h.send(ctx, ws, ev)
}

// RunCustomer owns one customer socket until it disconnects. Unknown session
// ids are rejected with a policy-violation close.
func (h *Hub) RunCustomer(ctx context.Context, sessionID string, ws conn) {
	h.mu.Lock()
	c, ok := h.customers[sessionID]
	if !ok {
		h.mu.Unlock()
		ws.Close(websocket.StatusPolicyViolation, "unknown session")
		return
	}
	c.ws = ws
	c.confirmed = true
	queued := c.queued
	c.queued = nil
	op := h.operator
	h.mu.Unlock()

	h.logger.Info("customer connected", "session_id", sessionID, "queued_replies", len(queued))
	for _, ev := range queued {
		h.send(ctx, ws, ev)
	}
	if op != nil {
		h.send(ctx, op, Event{Type: "customer_connected", SessionID: sessionID})
	}

	defer func() {
		h.mu.Lock()
		if cur, ok := h.customers[sessionID]; ok && cur.ws == ws {
			cur.ws = nil
			cur.confirmed = false
		}
		op := h.operator
		h.mu.Unlock()
		ws.CloseNow()
		if op != nil {
			h.send(context.WithoutCancel(ctx), op, Event{Type: "customer_disconnected", SessionID: sessionID})
		}
		h.logger.Info("customer disconnected", "session_id", sessionID)
	}()

	for {
		_, data, err := ws.Read(ctx)
		if err != nil {
			return
		}
		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			h.logger.Warn("bad customer frame", "session_id", sessionID, "error", err)
			continue
		}

		h.mu.Lock()
		op := h.operator
		h.mu.Unlock()
		if op == nil {
			// No operator online: the message is dropped, the customer
			// already saw the transfer notice.
			continue
		}
		h.send(ctx, op, Event{
			Type:      "message",
			SessionID: sessionID,
			Content:   ev.Content,
		})
	}
}

// End removes a finished session from the hub.
func (h *Hub) End(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.customers, sessionID)
}
