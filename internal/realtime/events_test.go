package realtime

import (
	"testing"

	"github.com/pion/webrtc/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Saifkhan77806/LoveTown/internal/db"
)

func TestDecodeRegisterAcceptsBareOrObject(t *testing.T) {
	ev, err := Decode([]byte(`{"event":"register","data":"a@x.com"}`))
	require.NoError(t, err)
	assert.Equal(t, Register{UserID: "a@x.com"}, ev)

	ev, err = Decode([]byte(`{"event":"register","data":{"userId":"a@x.com"}}`))
	require.NoError(t, err)
	assert.Equal(t, Register{UserID: "a@x.com"}, ev)

	_, err = Decode([]byte(`{"event":"register","data":""}`))
	assert.Error(t, err)
}

func TestDecodeSendMessage(t *testing.T) {
	ev, err := Decode([]byte(`{"event":"send-message","data":{"id":"tmp-1","from":"a","to":"b","content":"hi","timestamp":"2025-02-14T09:00:00Z","type":"image"}}`))
	require.NoError(t, err)
	msg := ev.(SendMessage)
	assert.Equal(t, db.MessageImage, msg.Type)
	require.NotNil(t, msg.Timestamp)
	assert.Equal(t, 2025, msg.Timestamp.Year())

	for name, frame := range map[string]string{
		"empty content": `{"event":"send-message","data":{"from":"a","to":"b","content":" "}}`,
		"self":          `{"event":"send-message","data":{"from":"a","to":"a","content":"hi"}}`,
		"no recipient":  `{"event":"send-message","data":{"from":"a","content":"hi"}}`,
		"bad type":      `{"event":"send-message","data":{"from":"a","to":"b","content":"hi","type":"gif"}}`,
		"no data":       `{"event":"send-message"}`,
	} {
		_, err := Decode([]byte(frame))
		assert.Error(t, err, name)
	}
}

func TestDecodeSignaling(t *testing.T) {
	ev, err := Decode([]byte(`{"event":"call-user","data":{"roomId":"a-b","offer":{"type":"offer","sdp":"v=0"}}}`))
	require.NoError(t, err)
	call := ev.(CallUser)
	assert.Equal(t, webrtc.SDPTypeOffer, call.Offer.Type)
	assert.Equal(t, "v=0", call.Offer.SDP)
	assert.JSONEq(t, `{"type":"offer","sdp":"v=0"}`, string(call.Raw))

	ev, err = Decode([]byte(`{"event":"ice-candidate","data":{"roomId":"a-b","candidate":{"candidate":"candidate:1","sdpMLineIndex":0}}}`))
	require.NoError(t, err)
	ice := ev.(ICECandidate)
	assert.Equal(t, "candidate:1", ice.Candidate.Candidate)
	require.NotNil(t, ice.Candidate.SDPMLineIndex)
	assert.Equal(t, uint16(0), *ice.Candidate.SDPMLineIndex)
	assert.JSONEq(t, `{"candidate":"candidate:1","sdpMLineIndex":0}`, string(ice.Raw))

	_, err = Decode([]byte(`{"event":"make-answer","data":{"answer":{"type":"answer","sdp":""}}}`))
	assert.Error(t, err, "room id is required")

	_, err = Decode([]byte(`{"event":"call-user","data":{"roomId":"a-b"}}`))
	assert.Error(t, err, "offer is required")

	_, err = Decode([]byte(`{"event":"ice-candidate","data":{"roomId":"a-b","candidate":null}}`))
	assert.Error(t, err, "candidate is required")
}

func TestDecodeSignalingKeepsPayloadBytes(t *testing.T) {
	offer := `{"type":"offer","sdp":"v=0\r\n","x-renegotiate":true}`
	ev, err := Decode([]byte(`{"event":"call-user","data":{"roomId":"a-b","offer":` + offer + `}}`))
	require.NoError(t, err)
	assert.JSONEq(t, offer, string(ev.(CallUser).Raw))
}

func TestDecodeTypingKeepsDirection(t *testing.T) {
	ev, err := Decode([]byte(`{"event":"stop-typing","data":{"roomId":"a-b","userId":"a"}}`))
	require.NoError(t, err)
	assert.Equal(t, EventStopTyping, ev.Event())

	ev, err = Decode([]byte(`{"event":"typing","data":{"roomId":"a-b","userId":"a"}}`))
	require.NoError(t, err)
	assert.Equal(t, EventTyping, ev.Event())
}

func TestDecodeRejectsUnknownOrMissingEvent(t *testing.T) {
	_, err := Decode([]byte(`{"data":{}}`))
	assert.Error(t, err)
	_, err = Decode([]byte(`{"event":"calling","data":{}}`))
	assert.Error(t, err)
	_, err = Decode([]byte(`[1,2]`))
	assert.Error(t, err)
}
