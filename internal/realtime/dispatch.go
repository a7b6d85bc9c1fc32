package realtime

import (
	"context"
	"fmt"

	"github.com/Saifkhan77806/LoveTown/internal/db"
	svcErr "github.com/Saifkhan77806/LoveTown/internal/errors"
	"github.com/Saifkhan77806/LoveTown/internal/service/chat"
)

func (h *Hub) dispatch(ctx context.Context, c *Client, ev Inbound) error {
	switch e := ev.(type) {
	case Register:
		return h.onRegister(c, e)
	case JoinRoom:
		return h.onJoin(ctx, c, e)
	case SendMessage:
		return h.onSend(ctx, c, e)
	case IsOnline:
		return h.onIsOnline(c, e)
	case CallUser:
		return h.onCall(ctx, c, e)
	case MakeAnswer:
		return h.relay(c, e.RoomID, EventAnswerMade, SignalData{RoomID: e.RoomID, From: c.user, Answer: e.Raw})
	case ICECandidate:
		return h.relay(c, e.RoomID, EventICECandidate, SignalData{RoomID: e.RoomID, From: c.user, Candidate: e.Raw})
	case EndCall:
		h.onEndCall(c, e)
		return nil
	case MarkAsRead:
		return h.onMarkRead(ctx, c, e)
	case Typing:
		return h.onTyping(c, e)
	}
	return svcErr.BadInput(fmt.Sprintf("unhandled event %q", ev.Event()))
}

func (h *Hub) onRegister(c *Client, e Register) error {
	if err := c.owns(e.UserID); err != nil {
		return err
	}
	if !h.do(func() { h.bind(c) }) {
		return ErrHubStopped
	}
	c.reply(EventRegistered, RegisteredData{UserID: c.user, Handle: c.handle})
	return nil
}

// onJoin subscribes the connection to the pair's room and replays the
// stored history, the count and the partner's presence.
func (h *Hub) onJoin(ctx context.Context, c *Client, e JoinRoom) error {
	if err := c.owns(e.From); err != nil {
		return err
	}
	roomID := db.RoomID(e.From, e.To)

	var online bool
	if !h.do(func() {
		r := h.subscribe(c, e.From, e.To)
		online = h.presence.IsOnline(e.To)
		h.broadcast(r, EventIsOnline, OnlineData{RoomID: roomID, UserID: e.From, Online: true}, c.handle)
	}) {
		return ErrHubStopped
	}

	page, err := h.chat.History(ctx, e.From, e.To, 0, "")
	if err != nil {
		return err
	}
	msgs := page.Messages
	if msgs == nil {
		msgs = []db.Message{}
	}
	c.reply(EventMessageHistory, HistoryData{
		RoomID:     roomID,
		Messages:   msgs,
		HasMore:    page.HasMore,
		NextCursor: page.NextCursor,
	})
	unlocked, err := h.chat.VideoUnlocked(ctx, e.From, e.To)
	if err != nil {
		return err
	}
	c.reply(EventMessageCount, h.countData(roomID, page.Total, unlocked))
	c.reply(EventGetOnline, OnlineData{RoomID: roomID, UserID: e.To, Online: online})
	return nil
}

// onSend persists first. Only a stored message reaches the room; a failed
// store is reported to the sender alone.
func (h *Hub) onSend(ctx context.Context, c *Client, e SendMessage) error {
	if err := c.owns(e.From); err != nil {
		return err
	}
	res, err := h.chat.Send(ctx, chat.SendInput{
		From:            e.From,
		To:              e.To,
		Content:         e.Content,
		Type:            e.Type,
		ClientTimestamp: e.Timestamp,
	})
	if err != nil {
		return err
	}

	roomID := db.RoomID(e.From, e.To)
	count := h.countData(roomID, res.Count, res.VideoUnlocked)
	if !h.do(func() {
		r := h.rooms[roomID]
		if r == nil || r.subs[c.handle] == nil {
			// the sender still learns the outcome without joining
			h.push(c, EventReceiveMessage, res.Message)
			h.push(c, EventMessageCount, count)
		}
		if r == nil {
			return
		}
		h.broadcast(r, EventReceiveMessage, res.Message, "")
		h.broadcast(r, EventMessageCount, count, "")
		if res.MilestoneReached {
			h.broadcast(r, EventMilestoneReached, MilestoneData{RoomID: roomID, Count: res.Count}, "")
		}
	}) {
		return ErrHubStopped
	}
	return nil
}

func (h *Hub) countData(roomID string, n int64, unlocked bool) CountData {
	return CountData{
		RoomID:        roomID,
		Count:         n,
		Milestone:     h.chat.Milestone(),
		VideoUnlocked: unlocked,
	}
}

func (h *Hub) onIsOnline(c *Client, e IsOnline) error {
	if err := c.owns(e.From); err != nil {
		return err
	}
	roomID := db.RoomID(e.From, e.To)
	if !h.do(func() {
		if r := h.rooms[roomID]; r != nil {
			h.broadcast(r, EventIsOnline, OnlineData{RoomID: roomID, UserID: e.From, Online: e.Online}, c.handle)
		}
	}) {
		return ErrHubStopped
	}
	return nil
}

// onCall opens a call only once the pair has unlocked video.
func (h *Hub) onCall(ctx context.Context, c *Client, e CallUser) error {
	var a, b string
	var err error
	if !h.do(func() {
		var r *room
		if r, err = h.member(c, e.RoomID); err == nil {
			a, b = r.a, r.b
		}
	}) {
		return ErrHubStopped
	}
	if err != nil {
		return err
	}

	unlocked, err := h.chat.VideoUnlocked(ctx, a, b)
	if err != nil {
		return err
	}
	if !unlocked {
		return svcErr.Unauthorized(fmt.Sprintf("video calling unlocks after %d messages", h.chat.Milestone()))
	}

	if err := h.relay(c, e.RoomID, EventCallMade, SignalData{RoomID: e.RoomID, From: c.user, Offer: e.Raw}); err != nil {
		return err
	}
	c.reply(EventCalling, SignalData{RoomID: e.RoomID, From: c.user})
	return nil
}

// relay forwards a signaling payload to the other subscribers of a room the
// sender has joined.
func (h *Hub) relay(c *Client, roomID, event string, data any) error {
	var err error
	if !h.do(func() {
		var r *room
		if r, err = h.member(c, roomID); err == nil {
			h.broadcast(r, event, data, c.handle)
		}
	}) {
		return ErrHubStopped
	}
	return err
}

// onEndCall never fails: without a room or a call there is nothing to end.
func (h *Hub) onEndCall(c *Client, e EndCall) {
	if e.RoomID == "" {
		return
	}
	h.do(func() {
		if r, err := h.member(c, e.RoomID); err == nil {
			h.broadcast(r, EventEndCall, SignalData{RoomID: e.RoomID, From: c.user}, c.handle)
		}
	})
}

func (h *Hub) onMarkRead(ctx context.Context, c *Client, e MarkAsRead) error {
	if err := c.owns(e.UserID); err != nil {
		return err
	}
	var partner string
	var err error
	if !h.do(func() {
		var r *room
		if r, err = h.member(c, e.RoomID); err == nil {
			partner = r.partner(c.user)
		}
	}) {
		return ErrHubStopped
	}
	if err != nil {
		return err
	}

	n, err := h.chat.MarkRead(ctx, c.user, partner)
	if err != nil {
		return err
	}
	if !h.do(func() {
		if r := h.rooms[e.RoomID]; r != nil {
			h.broadcast(r, EventMessagesRead, ReadData{RoomID: e.RoomID, UserID: c.user, Count: n}, "")
		}
	}) {
		return ErrHubStopped
	}
	return nil
}

func (h *Hub) onTyping(c *Client, e Typing) error {
	if err := c.owns(e.UserID); err != nil {
		return err
	}
	event := EventUserTyping
	if e.Stop {
		event = EventUserStopTyping
	}
	return h.relay(c, e.RoomID, event, TypingData{RoomID: e.RoomID, UserID: c.user})
}
