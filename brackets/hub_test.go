package brackets

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishReachesRoom(t *testing.T) {
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	go hub.Run()
	defer hub.Stop()

	subscriber := NewClient(hub, nil, RoomForCompetition(4))
	other := NewClient(hub, nil, RoomForCompetition(5))
	hub.Register <- subscriber
	hub.Register <- other

	require.Eventually(t, func() bool { return hub.ClientsInRoom("competition_4") == 1 }, time.Second, 10*time.Millisecond)

	hub.Publish(4, EventMatchUpdated, map[string]int{"match_id": 9})

	select {
	case raw := <-subscriber.Send:
		var msg struct {
			Type    string         `json:"type"`
			RoomID  string         `json:"room_id"`
			Payload map[string]int `json:"payload"`
		}
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, EventMatchUpdated, msg.Type)
		assert.Equal(t, "competition_4", msg.RoomID)
		assert.Equal(t, 9, msg.Payload["match_id"])
	case <-time.After(time.Second):
		t.Fatal("subscriber did not receive the event")
	}

	assert.Empty(t, other.Send, "other rooms are not notified")

	hub.Unregister <- subscriber
	require.Eventually(t, func() bool { return hub.ClientsInRoom("competition_4") == 0 }, time.Second, 10*time.Millisecond)
	_, open := <-subscriber.Send
	assert.False(t, open)
}
