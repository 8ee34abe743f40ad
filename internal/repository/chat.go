package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/IRO05/LocalCleric/internal/database"
	"github.com/IRO05/LocalCleric/internal/models"
)

type ChatRepository struct {
	db *database.DB
}

func NewChatRepository(db *database.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// LatestSession returns the most recently started session for the user, or
// nil when the user has none yet.
func (r *ChatRepository) LatestSession(ctx context.Context, userID string) (*models.ChatSession, error) {
	session := &models.ChatSession{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT id, user_id, started_at FROM chat_sessions
		 WHERE user_id = $1
		 ORDER BY started_at DESC
		 LIMIT 1`,
		userID,
	).Scan(&session.ID, &session.UserID, &session.StartedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (r *ChatRepository) CreateSession(ctx context.Context, session *models.ChatSession) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	return r.db.Pool.QueryRow(ctx,
		`INSERT INTO chat_sessions (id, user_id) VALUES ($1, $2)
		 RETURNING started_at`,
		session.ID, session.UserID,
	).Scan(&session.StartedAt)
}

func (r *ChatRepository) AppendTurn(ctx context.Context, turn *models.ChatTurn) error {
	if turn.ID == "" {
		turn.ID = uuid.NewString()
	}
	return r.db.Pool.QueryRow(ctx,
		`INSERT INTO chat_messages (id, session_id, text, sender, error, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING seq`,
		turn.ID, turn.SessionID, turn.Text, string(turn.Sender), turn.Error, turn.Timestamp,
	).Scan(&turn.Seq)
}

// Turns returns all turns of a session in conversation order.
func (r *ChatRepository) Turns(ctx context.Context, sessionID string) ([]models.ChatTurn, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, session_id, seq, text, sender, error, created_at
		 FROM chat_messages WHERE session_id = $1
		 ORDER BY created_at ASC, seq ASC`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var turns []models.ChatTurn
	for rows.Next() {
		var turn models.ChatTurn
		var sender string
		if err := rows.Scan(&turn.ID, &turn.SessionID, &turn.Seq, &turn.Text,
			&sender, &turn.Error, &turn.Timestamp); err != nil {
			return nil, err
		}
		turn.Sender = models.Sender(sender)
		turns = append(turns, turn)
	}
	return turns, rows.Err()
}
