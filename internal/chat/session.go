// Package chat owns the persistent conversation log and the turn-taking
// protocol between the user, the assistant, and the calendar.
package chat

import (
	"context"
	"log"
	"time"

	"github.com/IRO05/LocalCleric/internal/models"
)

// WelcomeText seeds every new session and doubles as the defensive default
// when a session has no stored turns.
const WelcomeText = `Hi! I'm LocalCleric, your personal assistant. Ask me anything, or ask me to schedule something, like "book a dentist appointment next Friday at 2 PM".`

// SessionSource is the persistence boundary for sessions and turns.
type SessionSource interface {
	LatestSession(ctx context.Context, userID string) (*models.ChatSession, error)
	CreateSession(ctx context.Context, session *models.ChatSession) error
	AppendTurn(ctx context.Context, turn *models.ChatTurn) error
	Turns(ctx context.Context, sessionID string) ([]models.ChatTurn, error)
}

type Sessions struct {
	repo SessionSource
	now  func() time.Time
}

func NewSessions(repo SessionSource) *Sessions {
	return &Sessions{repo: repo, now: time.Now}
}

// Resolve returns the user's current session id: the most recently started
// session, or a brand-new one seeded with the welcome turn when none exists.
// Repeated calls reuse the same session, so resolution is idempotent across
// app loads.
func (s *Sessions) Resolve(ctx context.Context, userID string) (string, error) {
	existing, err := s.repo.LatestSession(ctx, userID)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return existing.ID, nil
	}

	session := &models.ChatSession{UserID: userID}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return "", err
	}

	welcome := &models.ChatTurn{
		SessionID: session.ID,
		Text:      WelcomeText,
		Sender:    models.SenderAssistant,
		Timestamp: s.now(),
	}
	if err := s.repo.AppendTurn(ctx, welcome); err != nil {
		// Non-fatal: Load falls back to the welcome turn for empty sessions.
		log.Printf("Failed to seed welcome turn for session %s: %v", session.ID, err)
	}

	return session.ID, nil
}

// Append stores one turn. Failures are for the caller to log; history loss is
// non-fatal to the interactive flow.
func (s *Sessions) Append(ctx context.Context, turn *models.ChatTurn) error {
	return s.repo.AppendTurn(ctx, turn)
}

// Load returns the session's turns in conversation order, falling back to
// the canonical welcome turn for an unexpectedly empty session.
func (s *Sessions) Load(ctx context.Context, sessionID string) ([]models.ChatTurn, error) {
	turns, err := s.repo.Turns(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(turns) == 0 {
		return []models.ChatTurn{{
			SessionID: sessionID,
			Text:      WelcomeText,
			Sender:    models.SenderAssistant,
			Timestamp: s.now(),
		}}, nil
	}
	return turns, nil
}
