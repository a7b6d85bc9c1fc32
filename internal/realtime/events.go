package realtime

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pion/webrtc/v4"

	"github.com/Saifkhan77806/LoveTown/internal/db"
)

// Inbound event names.
const (
	EventRegister     = "register"
	EventJoinRoom     = "join-room"
	EventSendMessage  = "send-message"
	EventIsOnline     = "isonline"
	EventCallUser     = "call-user"
	EventMakeAnswer   = "make-answer"
	EventICECandidate = "ice-candidate"
	EventEndCall      = "end-call"
	EventMarkAsRead   = "mark-as-read"
	EventTyping       = "typing"
	EventStopTyping   = "stop-typing"
)

// Outbound event names not shared with inbound ones.
const (
	EventRegistered       = "registered"
	EventMessageHistory   = "message-history"
	EventMessageCount     = "message-count"
	EventGetOnline        = "getonline"
	EventReceiveMessage   = "receive-message"
	EventMilestoneReached = "milestone-reached"
	EventCalling          = "calling"
	EventCallMade         = "call-made"
	EventAnswerMade       = "answer-made"
	EventMessagesRead     = "messages-read"
	EventUserTyping       = "user-typing"
	EventUserStopTyping   = "user-stop-typing"
	EventStatusChanged    = "status-changed"
	EventError            = "error"
)

// Envelope is the wire frame in both directions: {"event": ..., "data": ...}.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Inbound is one decoded, validated client event.
type Inbound interface {
	Event() string
	Validate() error
}

type Register struct {
	UserID string `json:"userId"`
}

type JoinRoom struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type SendMessage struct {
	// ID is the client's provisional id; the server assigns the durable one.
	ID        string         `json:"id,omitempty"`
	From      string         `json:"from"`
	To        string         `json:"to"`
	Content   string         `json:"content"`
	Timestamp *time.Time     `json:"timestamp,omitempty"`
	Type      db.MessageType `json:"type,omitempty"`
}

type IsOnline struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Online bool   `json:"online"`
}

// Signaling events keep the client's payload bytes in Raw. The typed field
// only validates them; peers receive Raw untouched.

type CallUser struct {
	RoomID string                    `json:"roomId"`
	Offer  webrtc.SessionDescription `json:"offer"`
	Raw    json.RawMessage           `json:"-"`
}

type MakeAnswer struct {
	RoomID string                    `json:"roomId"`
	Answer webrtc.SessionDescription `json:"answer"`
	Raw    json.RawMessage           `json:"-"`
}

type ICECandidate struct {
	RoomID    string                  `json:"roomId"`
	Candidate webrtc.ICECandidateInit `json:"candidate"`
	Raw       json.RawMessage         `json:"-"`
}

type EndCall struct {
	RoomID string `json:"roomId"`
}

// MarkAsRead marks every message the room partner sent to UserID as read.
type MarkAsRead struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
}

// Typing carries both typing and stop-typing; Stop tells them apart.
type Typing struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
	Stop   bool   `json:"-"`
}

func (Register) Event() string     { return EventRegister }
func (JoinRoom) Event() string     { return EventJoinRoom }
func (SendMessage) Event() string  { return EventSendMessage }
func (IsOnline) Event() string     { return EventIsOnline }
func (CallUser) Event() string     { return EventCallUser }
func (MakeAnswer) Event() string   { return EventMakeAnswer }
func (ICECandidate) Event() string { return EventICECandidate }
func (EndCall) Event() string      { return EventEndCall }
func (MarkAsRead) Event() string   { return EventMarkAsRead }

func (t Typing) Event() string {
	if t.Stop {
		return EventStopTyping
	}
	return EventTyping
}

func required(fields ...string) error {
	for i := 0; i+1 < len(fields); i += 2 {
		if strings.TrimSpace(fields[i+1]) == "" {
			return fmt.Errorf("%s is required", fields[i])
		}
	}
	return nil
}

func pair(from, to string) error {
	if err := required("from", from, "to", to); err != nil {
		return err
	}
	if from == to {
		return fmt.Errorf("from and to must differ")
	}
	return nil
}

func (e Register) Validate() error { return required("userId", e.UserID) }
func (e JoinRoom) Validate() error { return pair(e.From, e.To) }
func (e IsOnline) Validate() error { return pair(e.From, e.To) }

func (e SendMessage) Validate() error {
	if err := pair(e.From, e.To); err != nil {
		return err
	}
	if strings.TrimSpace(e.Content) == "" {
		return fmt.Errorf("content is required")
	}
	if e.Type != "" && !e.Type.Valid() {
		return fmt.Errorf("unknown message type %q", e.Type)
	}
	return nil
}

func (e CallUser) Validate() error     { return description(e.RoomID, "offer", e.Raw, e.Offer.Type) }
func (e MakeAnswer) Validate() error   { return description(e.RoomID, "answer", e.Raw, e.Answer.Type) }
func (e ICECandidate) Validate() error { return payload(e.RoomID, "candidate", e.Raw) }

func payload(roomID, field string, raw json.RawMessage) error {
	if err := required("roomId", roomID); err != nil {
		return err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

func description(roomID, field string, raw json.RawMessage, t webrtc.SDPType) error {
	if err := payload(roomID, field, raw); err != nil {
		return err
	}
	if t == webrtc.SDPTypeUnknown {
		return fmt.Errorf("%s has no session description type", field)
	}
	return nil
}

func (e EndCall) Validate() error    { return nil }
func (e MarkAsRead) Validate() error { return required("roomId", e.RoomID, "userId", e.UserID) }
func (e Typing) Validate() error     { return required("roomId", e.RoomID, "userId", e.UserID) }

// Decode parses a client frame into its typed event and validates it.
func Decode(frame []byte) (Inbound, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return nil, fmt.Errorf("malformed frame: %w", err)
	}

	var ev Inbound
	switch env.Event {
	case EventRegister:
		// register historically carries the bare user id as data
		var id string
		if json.Unmarshal(env.Data, &id) == nil {
			ev = Register{UserID: id}
			break
		}
		return decodeValid[Register](env.Data)
	case EventJoinRoom:
		return decodeValid[JoinRoom](env.Data)
	case EventSendMessage:
		return decodeValid[SendMessage](env.Data)
	case EventIsOnline:
		return decodeValid[IsOnline](env.Data)
	case EventCallUser:
		e, err := decodeAs[CallUser](env.Data)
		if err != nil {
			return nil, err
		}
		e.Raw = rawField(env.Data, "offer")
		return e, e.Validate()
	case EventMakeAnswer:
		e, err := decodeAs[MakeAnswer](env.Data)
		if err != nil {
			return nil, err
		}
		e.Raw = rawField(env.Data, "answer")
		return e, e.Validate()
	case EventICECandidate:
		e, err := decodeAs[ICECandidate](env.Data)
		if err != nil {
			return nil, err
		}
		e.Raw = rawField(env.Data, "candidate")
		return e, e.Validate()
	case EventEndCall:
		if len(env.Data) == 0 {
			return EndCall{}, nil
		}
		return decodeValid[EndCall](env.Data)
	case EventMarkAsRead:
		return decodeValid[MarkAsRead](env.Data)
	case EventTyping, EventStopTyping:
		t, err := decodeAs[Typing](env.Data)
		if err != nil {
			return nil, err
		}
		t.Stop = env.Event == EventStopTyping
		return t, t.Validate()
	case "":
		return nil, fmt.Errorf("event is required")
	default:
		return nil, fmt.Errorf("unknown event %q", env.Event)
	}
	return ev, ev.Validate()
}

func decodeAs[T any](data json.RawMessage) (T, error) {
	var v T
	if len(data) == 0 {
		return v, fmt.Errorf("data is required")
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("malformed data: %w", err)
	}
	return v, nil
}

// rawField returns one member of an already decoded object as sent.
func rawField(data json.RawMessage, name string) json.RawMessage {
	var fields map[string]json.RawMessage
	if json.Unmarshal(data, &fields) != nil {
		return nil
	}
	return fields[name]
}

func decodeValid[T Inbound](data json.RawMessage) (Inbound, error) {
	v, err := decodeAs[T](data)
	if err != nil {
		return nil, err
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	return v, nil
}

// Outbound payloads.

type RegisteredData struct {
	UserID string `json:"userId"`
	Handle string `json:"handle"`
}

type HistoryData struct {
	RoomID     string       `json:"roomId"`
	Messages   []db.Message `json:"messages"`
	HasMore    bool         `json:"hasMore"`
	NextCursor string       `json:"nextCursor,omitempty"`
}

type CountData struct {
	RoomID        string `json:"roomId"`
	Count         int64  `json:"count"`
	Milestone     int64  `json:"milestone"`
	VideoUnlocked bool   `json:"videoUnlocked"`
}

type OnlineData struct {
	RoomID string `json:"roomId,omitempty"`
	UserID string `json:"userId"`
	Online bool   `json:"online"`
}

type MilestoneData struct {
	RoomID string `json:"roomId"`
	Count  int64  `json:"count"`
}

type SignalData struct {
	RoomID    string          `json:"roomId"`
	From      string          `json:"from"`
	Offer     json.RawMessage `json:"offer,omitempty"`
	Answer    json.RawMessage `json:"answer,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
}

type ReadData struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
	Count  int64  `json:"count"`
}

type TypingData struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
}

type StatusData struct {
	UserID string    `json:"userId"`
	Status db.Status `json:"status"`
}

type ErrorData struct {
	Event   string `json:"event,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// encode builds an outbound frame.
func encode(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}
