package chat

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/IRO05/LocalCleric/internal/models"
)

const (
	// ConfirmationText follows a successful AI-scheduled event creation.
	ConfirmationText = "Event added to your calendar."
	// GenericErrorText is shown when the assistant request itself fails.
	GenericErrorText = "Sorry, I encountered an error. Please try again."
)

// Assistant is the remote chat completion boundary. Calls here are not
// retried, unlike store writes; the asymmetry is deliberate, a retried chat
// call would multiply the user-visible latency of every turn.
type Assistant interface {
	Respond(ctx context.Context, message string) (Reply, error)
}

// Reply is what the assistant produced for one turn: conversational text and
// an optional event-creation directive.
type Reply struct {
	Response string
	Event    *Directive
}

// TurnResult carries the turns produced by one submission, in the order the
// conversation shows them: user, assistant, then an optional follow-up
// confirmation or error turn.
type TurnResult struct {
	SessionID string
	Response  string
	Turns     []models.ChatTurn
	Event     *Directive
	Failed    bool
}

// Orchestrator composes session persistence, the assistant endpoint and the
// event scheduler into the end-to-end turn-taking protocol.
type Orchestrator struct {
	sessions  *Sessions
	assistant Assistant
	scheduler *Scheduler
	now       func() time.Time
}

func NewOrchestrator(sessions *Sessions, assistant Assistant, scheduler *Scheduler) *Orchestrator {
	return &Orchestrator{
		sessions:  sessions,
		assistant: assistant,
		scheduler: scheduler,
		now:       time.Now,
	}
}

// HandleTurn runs one submission through the protocol. The returned error is
// reserved for session resolution failures (connectivity); assistant and
// scheduling failures surface as error-flagged turns in the result, never as
// silently dropped intents.
func (o *Orchestrator) HandleTurn(ctx context.Context, userID, message string) (*TurnResult, error) {
	sessionID, err := o.sessions.Resolve(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve chat session: %w", err)
	}

	result := &TurnResult{SessionID: sessionID}
	base := o.now()

	// User turn is durable before the request goes out.
	result.append(o, ctx, models.ChatTurn{
		SessionID: sessionID,
		Text:      message,
		Sender:    models.SenderUser,
		Timestamp: base,
	})

	reply, err := o.assistant.Respond(ctx, message)
	if err != nil {
		log.Printf("Assistant request failed: %v", err)
		result.Failed = true
		result.Response = GenericErrorText
		result.append(o, ctx, models.ChatTurn{
			SessionID: sessionID,
			Text:      GenericErrorText,
			Sender:    models.SenderAssistant,
			Error:     true,
			Timestamp: base.Add(time.Millisecond),
		})
		return result, nil
	}

	result.Response = reply.Response
	result.append(o, ctx, models.ChatTurn{
		SessionID: sessionID,
		Text:      reply.Response,
		Sender:    models.SenderAssistant,
		Timestamp: base.Add(time.Millisecond),
	})

	if reply.Event != nil {
		if _, err := o.scheduler.Schedule(ctx, userID, *reply.Event); err != nil {
			result.append(o, ctx, models.ChatTurn{
				SessionID: sessionID,
				Text:      fmt.Sprintf("I couldn't add that event: %v", err),
				Sender:    models.SenderAssistant,
				Error:     true,
				Timestamp: base.Add(2 * time.Millisecond),
			})
			return result, nil
		}
		result.Event = reply.Event
		result.append(o, ctx, models.ChatTurn{
			SessionID: sessionID,
			Text:      ConfirmationText,
			Sender:    models.SenderAssistant,
			Timestamp: base.Add(2 * time.Millisecond),
		})
	}

	return result, nil
}

// History resolves the user's current session and returns its ordered turns.
func (o *Orchestrator) History(ctx context.Context, userID string) (string, []models.ChatTurn, error) {
	sessionID, err := o.sessions.Resolve(ctx, userID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to resolve chat session: %w", err)
	}
	turns, err := o.sessions.Load(ctx, sessionID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to load chat history: %w", err)
	}
	return sessionID, turns, nil
}

// append records the turn in the result first (what the UI renders), then
// persists it. Persistence failures are logged, not retried: losing a line of
// history must not break the conversation.
func (r *TurnResult) append(o *Orchestrator, ctx context.Context, turn models.ChatTurn) {
	r.Turns = append(r.Turns, turn)
	stored := turn
	if err := o.sessions.Append(ctx, &stored); err != nil {
		log.Printf("Failed to persist chat turn: %v", err)
	}
}
