// Package realtime routes chat, presence and call signaling between live
// websocket connections. One goroutine owns every subscription; client
// goroutines persist through the chat service and hand fan-out to that loop.
package realtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Saifkhan77806/LoveTown/internal/db"
	svcErr "github.com/Saifkhan77806/LoveTown/internal/errors"
	"github.com/Saifkhan77806/LoveTown/internal/presence"
	"github.com/Saifkhan77806/LoveTown/internal/service/chat"
)

const (
	sendBuffer = 256
	opTimeout  = 10 * time.Second
)

var ErrHubStopped = errors.New("realtime: hub stopped")

// ChatService is the persistence side of a room.
type ChatService interface {
	Send(ctx context.Context, in chat.SendInput) (*chat.SendResult, error)
	History(ctx context.Context, a, b string, limit int, cursor string) (*chat.HistoryPage, error)
	Count(ctx context.Context, a, b string) (int64, error)
	VideoUnlocked(ctx context.Context, a, b string) (bool, error)
	MarkRead(ctx context.Context, reader, partner string) (int64, error)
	Milestone() int64
}

type room struct {
	id   string
	a, b string
	subs map[string]*Client
}

func (r *room) has(user string) bool { return r.a == user || r.b == user }

func (r *room) partner(user string) string {
	if user == r.a {
		return r.b
	}
	return r.a
}

type Hub struct {
	chat     ChatService
	presence *presence.Registry
	logger   *slog.Logger

	ops     chan func()
	stopped chan struct{}
	runOnce sync.Once

	// owned by the loop
	clients map[string]*Client
	rooms   map[string]*room
}

func NewHub(chatSvc ChatService, registry *presence.Registry, logger *slog.Logger) *Hub {
	if registry == nil {
		registry = presence.NewRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		chat:     chatSvc,
		presence: registry,
		logger:   logger.With("component", "realtime"),
		ops:      make(chan func()),
		stopped:  make(chan struct{}),
		clients:  make(map[string]*Client),
		rooms:    make(map[string]*room),
	}
}

// Run processes submitted operations until ctx is done, then closes every
// connection. Only the first call runs the loop.
func (h *Hub) Run(ctx context.Context) {
	h.runOnce.Do(func() {
		defer close(h.stopped)
		for {
			select {
			case op := <-h.ops:
				h.exec(op)
			case <-ctx.Done():
				for _, c := range h.clients {
					c.close()
				}
				h.logger.Info("hub stopped", "connections", len(h.clients))
				return
			}
		}
	})
}

func (h *Hub) exec(op func()) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("hub operation panicked", "panic", r)
		}
	}()
	op()
}

// do runs fn on the loop and waits for it. It reports false once the hub
// has stopped. Never call it from inside the loop.
func (h *Hub) do(fn func()) bool {
	done := make(chan struct{})
	op := func() {
		defer close(done)
		fn()
	}
	select {
	case h.ops <- op:
	case <-h.stopped:
		return false
	}
	<-done
	return true
}

// Done is closed when the loop has exited.
func (h *Hub) Done() <-chan struct{} { return h.stopped }

// Connect registers a new connection for an authenticated user. The newest
// connection of a user receives their pushes.
func (h *Hub) Connect(user string) (*Client, error) {
	if user == "" {
		return nil, svcErr.Unauthorized("identity required")
	}
	c := newClient(h, user)
	if !h.do(func() {
		h.clients[c.handle] = c
		h.bind(c)
	}) {
		return nil, ErrHubStopped
	}
	c.reply(EventRegistered, RegisteredData{UserID: user, Handle: c.handle})
	return c, nil
}

// Disconnect prunes the connection from presence and its rooms. The
// partner is told only when this was the user's current connection.
func (h *Hub) Disconnect(c *Client) {
	h.do(func() {
		if _, ok := h.clients[c.handle]; !ok {
			return
		}
		delete(h.clients, c.handle)
		for id := range c.rooms {
			h.leave(c, id)
		}
		if user := h.presence.Unregister(c.handle); user != "" {
			h.announce(user, false, c.handle)
		}
	})
	c.close()
}

// StatusChanged pushes a relationship status change to the user's live
// connection, if any.
func (h *Hub) StatusChanged(email string, status db.Status) {
	h.do(func() {
		handle, ok := h.presence.Lookup(email)
		if !ok {
			return
		}
		if c := h.clients[handle]; c != nil {
			h.push(c, EventStatusChanged, StatusData{UserID: email, Status: status})
		}
	})
}

// Online lists the users with a live connection.
func (h *Hub) Online() []string { return h.presence.Online() }

// loop-only helpers below

func (h *Hub) bind(c *Client) {
	if prev := h.presence.Register(c.user, c.handle); prev != "" {
		h.logger.Info("connection replaced", "user", c.user, "previous", prev, "handle", c.handle)
	}
	h.announce(c.user, true, c.handle)
}

func (h *Hub) subscribe(c *Client, from, to string) *room {
	id := db.RoomID(from, to)
	r := h.rooms[id]
	if r == nil {
		a, b := db.SortedPair(from, to)
		r = &room{id: id, a: a, b: b, subs: make(map[string]*Client)}
		h.rooms[id] = r
	}
	r.subs[c.handle] = c
	c.rooms[id] = struct{}{}
	return r
}

func (h *Hub) leave(c *Client, id string) {
	delete(c.rooms, id)
	r := h.rooms[id]
	if r == nil {
		return
	}
	delete(r.subs, c.handle)
	if len(r.subs) == 0 {
		delete(h.rooms, id)
	}
}

// member returns the room only when c subscribed to it.
func (h *Hub) member(c *Client, id string) (*room, error) {
	r := h.rooms[id]
	if r == nil || r.subs[c.handle] == nil {
		return nil, svcErr.Unauthorized(fmt.Sprintf("not joined to room %s", id))
	}
	return r, nil
}

func (h *Hub) announce(user string, online bool, skip string) {
	for _, r := range h.rooms {
		if r.has(user) {
			h.broadcast(r, EventIsOnline, OnlineData{RoomID: r.id, UserID: user, Online: online}, skip)
		}
	}
}

func (h *Hub) broadcast(r *room, event string, data any, skip string) {
	frame, err := encode(event, data)
	if err != nil {
		h.logger.Error("encode failed", "event", event, "err", err)
		return
	}
	for handle, c := range r.subs {
		if handle != skip {
			c.deliver(frame)
		}
	}
}

func (h *Hub) push(c *Client, event string, data any) {
	frame, err := encode(event, data)
	if err != nil {
		h.logger.Error("encode failed", "event", event, "err", err)
		return
	}
	c.deliver(frame)
}

// Client is one live connection. Frames queued on send are written by the
// transport; done closes when the connection should go away.
type Client struct {
	hub    *Hub
	handle string
	user   string
	send   chan []byte
	done   chan struct{}
	once   sync.Once

	rooms map[string]struct{} // owned by the hub loop
}

func newClient(h *Hub, user string) *Client {
	return &Client{
		hub:    h,
		handle: uuid.NewString(),
		user:   user,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
		rooms:  make(map[string]struct{}),
	}
}

func (c *Client) Handle() string { return c.handle }
func (c *Client) User() string   { return c.user }

// Outbox yields encoded frames for the transport.
func (c *Client) Outbox() <-chan []byte { return c.send }

// Done is closed once the client is shut down.
func (c *Client) Done() <-chan struct{} { return c.done }

func (c *Client) close() { c.once.Do(func() { close(c.done) }) }

// deliver queues a frame without blocking. A client that cannot keep up is
// closed rather than allowed to stall the room.
func (c *Client) deliver(frame []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- frame:
		return true
	default:
		c.hub.logger.Warn("send buffer full, closing connection", "user", c.user, "handle", c.handle)
		c.close()
		return false
	}
}

func (c *Client) reply(event string, data any) { c.hub.push(c, event, data) }

func (c *Client) fail(event string, err error) {
	code := svcErr.CodeOf(err)
	if errors.Is(err, ErrHubStopped) || errors.Is(err, context.DeadlineExceeded) {
		code = svcErr.CodeDeliveryFailure
	}
	msg := err.Error()
	var appErr *svcErr.AppError
	if errors.As(err, &appErr) {
		msg = appErr.Message
	}
	c.reply(EventError, ErrorData{Event: event, Code: string(code), Message: msg})
}

// owns rejects events that claim another identity than the connection's.
func (c *Client) owns(user string) error {
	if user != c.user {
		return svcErr.Unauthorized(fmt.Sprintf("connection is bound to %s, not %s", c.user, user))
	}
	return nil
}

// Receive decodes and handles one inbound frame. Failures are reported to
// this connection only.
func (c *Client) Receive(ctx context.Context, frame []byte) {
	ev, err := Decode(frame)
	if err != nil {
		c.fail("", svcErr.BadInput(err.Error()))
		return
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := c.hub.dispatch(ctx, c, ev); err != nil {
		c.hub.logger.Debug("event rejected", "event", ev.Event(), "user", c.user, "err", err)
		c.fail(ev.Event(), err)
	}
}
