package main

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Saifkhan77806/LoveTown/internal/db"
	"github.com/Saifkhan77806/LoveTown/internal/realtime"
	"github.com/Saifkhan77806/LoveTown/internal/testutil"
)

func TestWirePushesExpiredFreezeToLiveConnection(t *testing.T) {
	env := testutil.NewEnv(t)
	past := testutil.Epoch.Add(-time.Hour)
	require.NoError(t, env.App.DB.Create(&db.User{
		Email: "a@test.com", Gender: string(db.GenderMale), Status: db.StatusFrozen, FrozenUntil: &past,
	}).Error)

	hubCtx, stop := context.WithCancel(context.Background())
	defer stop()
	svc, err := wire(context.Background(), hubCtx, env.App)
	require.NoError(t, err)

	assert.Same(t, svc.hub, env.App.Notifier)
	assert.Equal(t, db.StatusAvailable, env.User(t, "a@test.com").Status)

	// later transitions reach connected users through the same hub
	c, err := svc.hub.Connect("a@test.com")
	require.NoError(t, err)
	env.App.Notify("a@test.com", db.StatusAvailable)

	deadline := time.After(time.Second)
	for {
		select {
		case frame := <-c.Outbox():
			var msg realtime.Envelope
			require.NoError(t, json.Unmarshal(frame, &msg))
			if msg.Event == realtime.EventStatusChanged {
				return
			}
		case <-deadline:
			t.Fatal("no status-changed frame")
		}
	}
}
