package server

import (
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IRO05/LocalCleric/internal/models"
)

type feedPage struct {
	Type    string         `json:"type"`
	Events  []models.Event `json:"events"`
	HasMore bool           `json:"has_more"`
	Error   string         `json:"error"`
}

func readPage(t *testing.T, conn *websocket.Conn) feedPage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg feedPage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestCalendarFeed(t *testing.T) {
	h, events := newTestHandler(nil)
	srv := httptest.NewServer(New(h))
	defer srv.Close()

	base := time.Now().AddDate(0, 0, 1)
	for i := 0; i < 12; i++ {
		day := base.AddDate(0, 0, i)
		events.events = append(events.events, models.Event{
			ID:     fmt.Sprintf("evt-%03d", i),
			UserID: "u1",
			Title:  "event",
			Date:   time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.Local),
		})
	}

	url := strings.Replace(srv.URL, "http", "ws", 1) + "/ws/calendar?user_id=u1"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// The initial page arrives without being asked for.
	page := readPage(t, conn)
	require.Equal(t, "page", page.Type)
	require.Len(t, page.Events, 10)
	assert.True(t, page.HasMore)
	assert.Equal(t, "evt-000", page.Events[0].ID)

	require.NoError(t, conn.WriteJSON(feedCommand{Type: "load_more"}))
	page = readPage(t, conn)
	require.Len(t, page.Events, 12)
	assert.False(t, page.HasMore)

	require.NoError(t, conn.WriteJSON(feedCommand{Type: "remove", ID: "evt-000"}))
	page = readPage(t, conn)
	require.Len(t, page.Events, 11)
	for _, event := range page.Events {
		assert.NotEqual(t, "evt-000", event.ID)
	}
}

func TestCalendarFeedRequiresUserID(t *testing.T) {
	h, _ := newTestHandler(nil)
	srv := httptest.NewServer(New(h))
	defer srv.Close()

	url := strings.Replace(srv.URL, "http", "ws", 1) + "/ws/calendar"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 400, resp.StatusCode)
}
