package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/causeconnect/backend/internal/models"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origins are checked by the CORS middleware
	CheckOrigin: func(r *http.Request) bool { return true },
}

// presenceFrame is one message pushed to a presence stream client
type presenceFrame struct {
	Type     string            `json:"type"`
	Presence []models.Presence `json:"presence"`
}

// StreamPresence upgrades to a WebSocket that first sends the current presence
// of the watched users and then every change to it until the socket closes.
func (h *ChatHandler) StreamPresence(c echo.Context) error {
	if _, err := requireUser(c); err != nil {
		return err
	}
	ids, err := parseUserIDList(c.QueryParam("user_ids"))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	// Watch before the snapshot so no change falls between the two
	changes, err := h.presenceRepository.Watch(ctx, ids)
	if err != nil {
		return internalError(err)
	}
	snapshot, err := h.presenceRepository.GetPresence(ctx, ids)
	if err != nil {
		return internalError(err)
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade has already replied to the client
		log.Warn().Err(err).Msg("Presence stream upgrade failed")
		return nil
	}
	defer conn.Close()

	go readPump(conn, cancel)
	writePump(ctx, conn, snapshot, changes)
	return nil
}

// readPump discards client messages and cancels the stream when the socket closes
func readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()

	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Msg("Presence stream closed unexpectedly")
			}
			return
		}
	}
}

func writePump(ctx context.Context, conn *websocket.Conn, snapshot []models.Presence, changes <-chan models.Presence) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	if err := writeFrame(conn, presenceFrame{Type: "snapshot", Presence: snapshot}); err != nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case p, ok := <-changes:
			if !ok {
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "presence feed ended"))
				return
			}
			if err := writeFrame(conn, presenceFrame{Type: "update", Presence: []models.Presence{p}}); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func writeFrame(conn *websocket.Conn, frame presenceFrame) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(frame)
}
