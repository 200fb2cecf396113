package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/causeconnect/backend/internal/models"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestStreamPresence_SnapshotThenUpdates(t *testing.T) {
	f := newChatFixture(t)
	changes := make(chan models.Presence, 1)
	f.presence.On("GetPresence", mock.Anything, []string{"2"}).
		Return([]models.Presence{{UserID: "2", Status: models.PresenceOffline}}, nil)
	f.presence.On("Watch", mock.Anything, []string{"2"}).Return((<-chan models.Presence)(changes), nil)

	srv := httptest.NewServer(f.e)
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/chat/presence/stream?user_ids=2&access_token=" + f.annToken

	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var frame presenceFrame
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "snapshot", frame.Type)
	require.Len(t, frame.Presence, 1)
	assert.Equal(t, models.PresenceOffline, frame.Presence[0].Status)

	changes <- models.Presence{UserID: "2", Status: models.PresenceOnline}
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "update", frame.Type)
	assert.Equal(t, models.PresenceOnline, frame.Presence[0].Status)

	close(changes)
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseInternalServerErr), "got %v", err)
}

func TestStreamPresence_ChangeDuringSnapshotIsDelivered(t *testing.T) {
	f := newChatFixture(t)
	changes := make(chan models.Presence, 1)
	calls := make(chan string, 2)
	f.presence.On("Watch", mock.Anything, []string{"2"}).
		Run(func(mock.Arguments) { calls <- "watch" }).
		Return((<-chan models.Presence)(changes), nil)
	f.presence.On("GetPresence", mock.Anything, []string{"2"}).
		Run(func(mock.Arguments) {
			calls <- "snapshot"
			// The user comes online while the snapshot query runs
			changes <- models.Presence{UserID: "2", Status: models.PresenceOnline}
		}).
		Return([]models.Presence{{UserID: "2", Status: models.PresenceOffline}}, nil)

	srv := httptest.NewServer(f.e)
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/chat/presence/stream?user_ids=2&access_token=" + f.annToken

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var frame presenceFrame
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "snapshot", frame.Type)
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "update", frame.Type)
	assert.Equal(t, models.PresenceOnline, frame.Presence[0].Status)

	assert.Equal(t, "watch", <-calls)
	assert.Equal(t, "snapshot", <-calls)
}

func TestStreamPresence_RequiresUserIDs(t *testing.T) {
	f := newChatFixture(t)
	srv := httptest.NewServer(f.e)
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/chat/presence/stream?access_token=" + f.annToken

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	f.presence.AssertNotCalled(t, "Watch", mock.Anything, mock.Anything)
}
