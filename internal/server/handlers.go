package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/IRO05/LocalCleric/internal/calendar"
	"github.com/IRO05/LocalCleric/internal/chat"
)

type Handler struct {
	orchestrator *chat.Orchestrator
	events       *calendar.Store
}

// NewHandler wires the chat orchestrator and the calendar store into the
// HTTP surface. orchestrator may be nil when no assistant is configured.
func NewHandler(orchestrator *chat.Orchestrator, events *calendar.Store) *Handler {
	return &Handler{orchestrator: orchestrator, events: events}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/chat", h.Chat)
	e.GET("/api/chat/history", h.ChatHistory)
	e.GET("/api/events", h.ListEvents)
	e.POST("/api/events", h.CreateEvent)
	e.DELETE("/api/events/:id", h.DeleteEvent)
	e.GET("/ws/calendar", h.CalendarFeed)
}

type chatRequest struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

type eventDetails struct {
	Title string `json:"title"`
	Date  string `json:"date"`
	Time  string `json:"time,omitempty"`
}

// Chat runs one conversation turn.
// POST /api/chat
func (h *Handler) Chat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if strings.TrimSpace(req.Message) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Message is required"})
	}
	if req.UserID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "user_id is required"})
	}
	if h.orchestrator == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "assistant is not configured"})
	}

	result, err := h.orchestrator.HandleTurn(c.Request().Context(), req.UserID, req.Message)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if result.Failed {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": result.Response})
	}

	resp := map[string]interface{}{"response": result.Response}
	if result.Event != nil {
		resp["event_details"] = eventDetails{
			Title: result.Event.Title,
			Date:  result.Event.Date,
			Time:  result.Event.Time,
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// ChatHistory returns the ordered turns of the user's current session.
// GET /api/chat/history?user_id=
func (h *Handler) ChatHistory(c echo.Context) error {
	userID := c.QueryParam("user_id")
	if userID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "user_id is required"})
	}
	if h.orchestrator == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "assistant is not configured"})
	}

	sessionID, turns, err := h.orchestrator.History(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"messages":   turns,
	})
}

// ListEvents is a single-shot page read: the first page by default, the page
// after the (after_date, after_id) cursor when both are given.
// GET /api/events?user_id=&after_date=&after_id=
func (h *Handler) ListEvents(c echo.Context) error {
	userID := c.QueryParam("user_id")
	if userID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "user_id is required"})
	}

	var cursor *calendar.Cursor
	if afterDate, afterID := c.QueryParam("after_date"), c.QueryParam("after_id"); afterDate != "" && afterID != "" {
		date, err := calendar.ParseDate(afterDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		cursor = &calendar.Cursor{Date: date, ID: afterID}
	}

	events, hasMore, err := h.events.Page(c.Request().Context(), userID, cursor)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"events":   events,
		"has_more": hasMore,
	})
}

type createEventRequest struct {
	UserID string `json:"user_id"`
	Title  string `json:"title"`
	Date   string `json:"date"`
	Time   string `json:"time"`
}

// CreateEvent is the direct (non-AI) creation path.
// POST /api/events
func (h *Handler) CreateEvent(c echo.Context) error {
	var req createEventRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.UserID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "user_id is required"})
	}

	id, err := h.events.Create(c.Request().Context(), req.UserID, req.Title, req.Date, req.Time, false)
	if err != nil {
		if errors.Is(err, calendar.ErrEmptyTitle) || errors.Is(err, calendar.ErrInvalidDate) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, map[string]string{"id": id})
}

// DeleteEvent removes an event by id.
// DELETE /api/events/:id?user_id=
func (h *Handler) DeleteEvent(c echo.Context) error {
	userID := c.QueryParam("user_id")
	if userID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "user_id is required"})
	}

	if err := h.events.Remove(c.Request().Context(), userID, c.Param("id")); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.NoContent(http.StatusNoContent)
}
