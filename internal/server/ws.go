package server

import (
	"context"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Same-origin policy is enforced upstream; the feed is scoped by user id.
		return true
	},
}

type feedCommand struct {
	Type string `json:"type"` // "load_more" | "remove"
	ID   string `json:"id,omitempty"`
}

type feedMessage struct {
	Type    string      `json:"type"` // "page" | "error"
	Events  interface{} `json:"events,omitempty"`
	HasMore bool        `json:"has_more,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// CalendarFeed opens the live calendar subscription for a user and streams
// page snapshots over a WebSocket. The client drives pagination and deletion
// with feedCommand messages; closing the socket tears the subscription down.
// GET /ws/calendar?user_id=
func (h *Handler) CalendarFeed(c echo.Context) error {
	userID := c.QueryParam("user_id")
	if userID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "user_id is required"})
	}

	sub, err := h.events.Subscribe(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		sub.Close()
		log.Printf("Failed to upgrade WebSocket: %v", err)
		return err
	}

	// Snapshot pushes and command replies share the connection.
	var writeMu sync.Mutex
	send := func(msg feedMessage) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return ws.WriteJSON(msg)
	}

	go func() {
		defer ws.Close()
		for snapshot := range sub.Snapshots() {
			if snapshot.Err != nil {
				send(feedMessage{Type: "error", Error: snapshot.Err.Error()})
				return
			}
			if err := send(feedMessage{Type: "page", Events: snapshot.Events, HasMore: snapshot.HasMore}); err != nil {
				return
			}
		}
	}()

	go func() {
		defer sub.Close()
		defer ws.Close()
		// The request context ends with this handler; command operations live
		// as long as the socket does.
		ctx := context.Background()
		for {
			var cmd feedCommand
			if err := ws.ReadJSON(&cmd); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Printf("Calendar feed read error: %v", err)
				}
				return
			}

			switch cmd.Type {
			case "load_more":
				if err := sub.LoadMore(ctx); err != nil {
					send(feedMessage{Type: "error", Error: err.Error()})
				}
			case "remove":
				if err := sub.Remove(ctx, cmd.ID); err != nil {
					send(feedMessage{Type: "error", Error: err.Error()})
				}
			}
		}
	}()

	return nil
}
