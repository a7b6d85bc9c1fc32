package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Saifkhan77806/LoveTown/internal/db"
	"github.com/Saifkhan77806/LoveTown/internal/service/chat"
	"github.com/Saifkhan77806/LoveTown/internal/testutil"
)

const (
	alice = "alice@test.com"
	bob   = "bob@test.com"
)

var roomAB = db.RoomID(alice, bob)

// advance accepts every milestone.
type advance struct{}

func (advance) ReachMilestone(context.Context, string, string) (bool, error) { return true, nil }

type fixture struct {
	env  *testutil.Env
	chat *chat.Service
	hub  *Hub
	stop context.CancelFunc
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	env := testutil.NewEnv(t)
	env.App.Config.Chat.Milestone = 3
	env.Pair(t, alice, bob)
	svc := chat.NewService(env.App, advance{})
	hub := NewHub(svc, env.App.Presence, env.App.Logger)

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-hub.Done()
	})
	return &fixture{env: env, chat: svc, hub: hub, stop: cancel}
}

func (f *fixture) connect(t *testing.T, user string) *Client {
	t.Helper()
	c, err := f.hub.Connect(user)
	require.NoError(t, err)
	waitFor(t, c, EventRegistered)
	return c
}

func (f *fixture) join(t *testing.T, c *Client, to string) {
	t.Helper()
	c.Receive(context.Background(), frame(t, EventJoinRoom, JoinRoom{From: c.User(), To: to}))
	waitFor(t, c, EventGetOnline)
}

func (f *fixture) say(t *testing.T, c *Client, to, content string) {
	t.Helper()
	c.Receive(context.Background(), frame(t, EventSendMessage, SendMessage{From: c.User(), To: to, Content: content}))
}

func frame(t *testing.T, event string, data any) []byte {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	out, err := json.Marshal(Envelope{Event: event, Data: raw})
	require.NoError(t, err)
	return out
}

// waitFor skips frames until event arrives and decodes its data.
func waitFor(t *testing.T, c *Client, event string) json.RawMessage {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		select {
		case f := <-c.Outbox():
			var env Envelope
			require.NoError(t, json.Unmarshal(f, &env))
			if env.Event == event {
				return env.Data
			}
		case <-deadline:
			t.Fatalf("%s: no %q frame", c.User(), event)
			return nil
		}
	}
}

func decodeData[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

// quiet asserts nothing is queued for c.
func quiet(t *testing.T, c *Client) {
	t.Helper()
	select {
	case f := <-c.Outbox():
		t.Fatalf("%s: unexpected frame %s", c.User(), f)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestConnectRegistersNewestConnection(t *testing.T) {
	f := newFixture(t)

	first := f.connect(t, alice)
	second := f.connect(t, alice)
	assert.Equal(t, []string{alice}, f.hub.Online())

	handle, ok := f.env.App.Presence.Lookup(alice)
	require.True(t, ok)
	assert.Equal(t, second.Handle(), handle)

	// the stale connection leaving does not take alice offline
	f.hub.Disconnect(first)
	assert.Equal(t, []string{alice}, f.hub.Online())

	f.hub.Disconnect(second)
	assert.Empty(t, f.hub.Online())
}

func TestConnectRequiresIdentity(t *testing.T) {
	f := newFixture(t)
	_, err := f.hub.Connect("")
	assert.Error(t, err)
}

func TestRegisterRejectsOtherIdentity(t *testing.T) {
	f := newFixture(t)
	a := f.connect(t, alice)

	a.Receive(context.Background(), []byte(`{"event":"register","data":"bob@test.com"}`))
	e := decodeData[ErrorData](t, waitFor(t, a, EventError))
	assert.Equal(t, "UNAUTHORIZED", e.Code)
	assert.Equal(t, EventRegister, e.Event)

	a.Receive(context.Background(), []byte(`{"event":"register","data":"alice@test.com"}`))
	reg := decodeData[RegisteredData](t, waitFor(t, a, EventRegistered))
	assert.Equal(t, a.Handle(), reg.Handle)
}

func TestJoinRoomReplaysHistoryCountAndPresence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, text := range []string{"hi", "hello"} {
		_, err := f.chat.Send(ctx, chat.SendInput{From: alice, To: bob, Content: text})
		require.NoError(t, err)
	}

	a := f.connect(t, alice)
	b := f.connect(t, bob)

	a.Receive(ctx, frame(t, EventJoinRoom, JoinRoom{From: alice, To: bob}))
	hist := decodeData[HistoryData](t, waitFor(t, a, EventMessageHistory))
	assert.Equal(t, roomAB, hist.RoomID)
	require.Len(t, hist.Messages, 2)
	assert.Equal(t, "hi", hist.Messages[0].Content)
	assert.Equal(t, "hello", hist.Messages[1].Content)
	assert.False(t, hist.HasMore)

	count := decodeData[CountData](t, waitFor(t, a, EventMessageCount))
	assert.Equal(t, int64(2), count.Count)
	assert.Equal(t, int64(3), count.Milestone)
	assert.False(t, count.VideoUnlocked)

	online := decodeData[OnlineData](t, waitFor(t, a, EventGetOnline))
	assert.Equal(t, bob, online.UserID)
	assert.True(t, online.Online)

	// bob joining tells alice
	b.Receive(ctx, frame(t, EventJoinRoom, JoinRoom{From: bob, To: alice}))
	seen := decodeData[OnlineData](t, waitFor(t, a, EventIsOnline))
	assert.Equal(t, bob, seen.UserID)
	assert.True(t, seen.Online)
}

func TestJoinRoomAsSomeoneElseIsRejected(t *testing.T) {
	f := newFixture(t)
	a := f.connect(t, alice)

	a.Receive(context.Background(), frame(t, EventJoinRoom, JoinRoom{From: bob, To: alice}))
	e := decodeData[ErrorData](t, waitFor(t, a, EventError))
	assert.Equal(t, "UNAUTHORIZED", e.Code)
}

func TestSendBroadcastsToEverySubscriber(t *testing.T) {
	f := newFixture(t)
	a := f.connect(t, alice)
	b := f.connect(t, bob)
	f.join(t, a, bob)
	f.join(t, b, alice)

	f.say(t, a, bob, "hey")

	for _, c := range []*Client{a, b} {
		msg := decodeData[db.Message](t, waitFor(t, c, EventReceiveMessage))
		assert.Equal(t, "hey", msg.Content)
		assert.Equal(t, alice, msg.From)
		assert.NotEmpty(t, msg.ID)
		assert.True(t, msg.SentAt.Equal(testutil.Epoch))

		count := decodeData[CountData](t, waitFor(t, c, EventMessageCount))
		assert.Equal(t, int64(1), count.Count)
	}
}

func TestSendAnnouncesMilestoneOnce(t *testing.T) {
	f := newFixture(t)
	a := f.connect(t, alice)
	b := f.connect(t, bob)
	f.join(t, a, bob)
	f.join(t, b, alice)

	f.say(t, a, bob, "1")
	f.say(t, b, alice, "2")
	f.say(t, a, bob, "3")

	for _, c := range []*Client{a, b} {
		m := decodeData[MilestoneData](t, waitFor(t, c, EventMilestoneReached))
		assert.Equal(t, int64(3), m.Count)
		assert.Equal(t, roomAB, m.RoomID)
	}

	f.say(t, b, alice, "4")
	count := decodeData[CountData](t, waitFor(t, a, EventMessageCount))
	assert.Equal(t, int64(4), count.Count)
	assert.True(t, count.VideoUnlocked)
	quiet(t, a)
}

func TestSendWithoutJoiningStillAcknowledgesSender(t *testing.T) {
	f := newFixture(t)
	a := f.connect(t, alice)

	f.say(t, a, bob, "anyone?")
	msg := decodeData[db.Message](t, waitFor(t, a, EventReceiveMessage))
	assert.Equal(t, "anyone?", msg.Content)
}

func TestSendFailureReachesSenderOnly(t *testing.T) {
	f := newFixture(t)
	a := f.connect(t, alice)
	b := f.connect(t, bob)
	f.join(t, a, bob)
	f.join(t, b, alice)
	waitFor(t, a, EventIsOnline)

	require.NoError(t, f.env.App.DB.Exec("DROP TABLE messages").Error)
	f.say(t, a, bob, "lost?")

	e := decodeData[ErrorData](t, waitFor(t, a, EventError))
	assert.Equal(t, "DELIVERY_FAILURE", e.Code)
	assert.Equal(t, EventSendMessage, e.Event)
	quiet(t, b)
}

func TestCallIsGatedByMilestone(t *testing.T) {
	f := newFixture(t)
	a := f.connect(t, alice)
	b := f.connect(t, bob)
	f.join(t, a, bob)
	f.join(t, b, alice)
	waitFor(t, a, EventIsOnline)
	ctx := context.Background()

	offer := webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: "v=0\r\no=- 1 2 IN IP4 127.0.0.1\r\n"}
	a.Receive(ctx, frame(t, EventCallUser, CallUser{RoomID: roomAB, Offer: offer}))
	e := decodeData[ErrorData](t, waitFor(t, a, EventError))
	assert.Equal(t, "UNAUTHORIZED", e.Code)
	assert.Contains(t, e.Message, "3 messages")
	quiet(t, b)

	for i := 0; i < 3; i++ {
		_, err := f.chat.Send(ctx, chat.SendInput{From: alice, To: bob, Content: "msg"})
		require.NoError(t, err)
	}

	a.Receive(ctx, frame(t, EventCallUser, CallUser{RoomID: roomAB, Offer: offer}))
	made := decodeData[SignalData](t, waitFor(t, b, EventCallMade))
	assert.Equal(t, offer, sdpOf(t, made.Offer))
	assert.Equal(t, alice, made.From)
	waitFor(t, a, EventCalling)

	answer := webrtc.SessionDescription{Type: webrtc.SDPTypeAnswer, SDP: "v=0\r\n"}
	b.Receive(ctx, frame(t, EventMakeAnswer, MakeAnswer{RoomID: roomAB, Answer: answer}))
	got := decodeData[SignalData](t, waitFor(t, a, EventAnswerMade))
	assert.Equal(t, answer, sdpOf(t, got.Answer))

	mid := "0"
	idx := uint16(0)
	cand := webrtc.ICECandidateInit{Candidate: "candidate:1 1 udp 2122260223 10.0.0.1 54321 typ host", SDPMid: &mid, SDPMLineIndex: &idx}
	a.Receive(ctx, frame(t, EventICECandidate, ICECandidate{RoomID: roomAB, Candidate: cand}))
	ice := decodeData[SignalData](t, waitFor(t, b, EventICECandidate))
	var gotCand webrtc.ICECandidateInit
	require.NoError(t, json.Unmarshal(ice.Candidate, &gotCand))
	assert.Equal(t, cand.Candidate, gotCand.Candidate)
	require.NotNil(t, gotCand.SDPMid)
	assert.Equal(t, "0", *gotCand.SDPMid)

	// never echoed to the sender
	quiet(t, a)
}

func sdpOf(t *testing.T, raw json.RawMessage) webrtc.SessionDescription {
	t.Helper()
	require.NotEmpty(t, raw)
	var sd webrtc.SessionDescription
	require.NoError(t, json.Unmarshal(raw, &sd))
	return sd
}

func TestSignalingRelaysPayloadUntouched(t *testing.T) {
	f := newFixture(t)
	a := f.connect(t, alice)
	b := f.connect(t, bob)
	f.join(t, a, bob)
	f.join(t, b, alice)
	waitFor(t, a, EventIsOnline)
	ctx := context.Background()

	answer := `{"type":"answer","sdp":"v=0\r\n","x-simulcast":{"layers":3}}`
	b.Receive(ctx, []byte(`{"event":"make-answer","data":{"roomId":"`+roomAB+`","answer":`+answer+`}}`))
	got := decodeData[SignalData](t, waitFor(t, a, EventAnswerMade))
	assert.JSONEq(t, answer, string(got.Answer))

	candidate := `{"candidate":"","sdpMid":"0","usernameFragment":"abcd","x-extra":1}`
	a.Receive(ctx, []byte(`{"event":"ice-candidate","data":{"roomId":"`+roomAB+`","candidate":`+candidate+`}}`))
	ice := decodeData[SignalData](t, waitFor(t, b, EventICECandidate))
	assert.JSONEq(t, candidate, string(ice.Candidate))
}

func TestSignalingNeedsJoinedRoom(t *testing.T) {
	f := newFixture(t)
	a := f.connect(t, alice)

	a.Receive(context.Background(), frame(t, EventMakeAnswer, MakeAnswer{RoomID: roomAB, Answer: webrtc.SessionDescription{Type: webrtc.SDPTypeAnswer}}))
	e := decodeData[ErrorData](t, waitFor(t, a, EventError))
	assert.Equal(t, "UNAUTHORIZED", e.Code)
}

func TestEndCallNeverFails(t *testing.T) {
	f := newFixture(t)
	a := f.connect(t, alice)
	b := f.connect(t, bob)
	ctx := context.Background()

	a.Receive(ctx, []byte(`{"event":"end-call"}`))
	a.Receive(ctx, frame(t, EventEndCall, EndCall{RoomID: "nobody-here"}))
	quiet(t, a)

	f.join(t, a, bob)
	f.join(t, b, alice)
	waitFor(t, a, EventIsOnline)

	a.Receive(ctx, frame(t, EventEndCall, EndCall{RoomID: roomAB}))
	a.Receive(ctx, frame(t, EventEndCall, EndCall{RoomID: roomAB}))
	waitFor(t, b, EventEndCall)
	waitFor(t, b, EventEndCall)
	quiet(t, a)
}

func TestDisconnectTellsRoomUserWentOffline(t *testing.T) {
	f := newFixture(t)
	a := f.connect(t, alice)
	b := f.connect(t, bob)
	f.join(t, a, bob)
	f.join(t, b, alice)
	waitFor(t, a, EventIsOnline)

	f.hub.Disconnect(b)
	off := decodeData[OnlineData](t, waitFor(t, a, EventIsOnline))
	assert.Equal(t, bob, off.UserID)
	assert.False(t, off.Online)
	assert.Equal(t, []string{alice}, f.hub.Online())

	select {
	case <-b.Done():
	default:
		t.Fatal("disconnected client not closed")
	}
}

func TestStaleConnectionLeavingKeepsUserOnline(t *testing.T) {
	f := newFixture(t)
	a := f.connect(t, alice)
	old := f.connect(t, bob)
	f.join(t, a, bob)
	f.join(t, old, alice)
	waitFor(t, a, EventIsOnline)

	fresh := f.connect(t, bob)
	back := decodeData[OnlineData](t, waitFor(t, a, EventIsOnline))
	assert.True(t, back.Online)

	f.hub.Disconnect(old)
	quiet(t, a)
	handle, ok := f.env.App.Presence.Lookup(bob)
	require.True(t, ok)
	assert.Equal(t, fresh.Handle(), handle)
}

func TestMarkAsReadBroadcastsToRoom(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := f.chat.Send(ctx, chat.SendInput{From: bob, To: alice, Content: "ping"})
		require.NoError(t, err)
	}
	a := f.connect(t, alice)
	b := f.connect(t, bob)
	f.join(t, a, bob)
	f.join(t, b, alice)

	a.Receive(ctx, frame(t, EventMarkAsRead, MarkAsRead{RoomID: roomAB, UserID: alice}))
	for _, c := range []*Client{a, b} {
		r := decodeData[ReadData](t, waitFor(t, c, EventMessagesRead))
		assert.Equal(t, alice, r.UserID)
		assert.Equal(t, int64(2), r.Count)
	}

	n, err := f.chat.Count(ctx, alice, bob)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestTypingIsRelayedToPartner(t *testing.T) {
	f := newFixture(t)
	a := f.connect(t, alice)
	b := f.connect(t, bob)
	f.join(t, a, bob)
	f.join(t, b, alice)
	waitFor(t, a, EventIsOnline)
	ctx := context.Background()

	a.Receive(ctx, frame(t, EventTyping, Typing{RoomID: roomAB, UserID: alice}))
	typing := decodeData[TypingData](t, waitFor(t, b, EventUserTyping))
	assert.Equal(t, alice, typing.UserID)

	a.Receive(ctx, frame(t, EventStopTyping, Typing{RoomID: roomAB, UserID: alice}))
	waitFor(t, b, EventUserStopTyping)
	quiet(t, a)
}

func TestStatusChangedReachesLiveConnection(t *testing.T) {
	f := newFixture(t)
	a := f.connect(t, alice)

	f.hub.StatusChanged(alice, db.StatusChatting)
	st := decodeData[StatusData](t, waitFor(t, a, EventStatusChanged))
	assert.Equal(t, db.StatusChatting, st.Status)

	// offline users are skipped
	f.hub.StatusChanged(bob, db.StatusFrozen)
	quiet(t, a)
}

func TestMalformedFramesAreReported(t *testing.T) {
	f := newFixture(t)
	a := f.connect(t, alice)
	ctx := context.Background()

	a.Receive(ctx, []byte("not json"))
	e := decodeData[ErrorData](t, waitFor(t, a, EventError))
	assert.Equal(t, "INVALID_ARGUMENT", e.Code)

	a.Receive(ctx, []byte(`{"event":"dance","data":{}}`))
	e = decodeData[ErrorData](t, waitFor(t, a, EventError))
	assert.Contains(t, e.Message, "dance")
}

func TestStoppedHubRefusesConnections(t *testing.T) {
	f := newFixture(t)
	a := f.connect(t, alice)

	f.stop()
	<-f.hub.Done()
	<-a.Done()

	_, err := f.hub.Connect(bob)
	assert.ErrorIs(t, err, ErrHubStopped)
}
