package server

import (
	"context"

	"github.com/IRO05/LocalCleric/internal/ai"
	"github.com/IRO05/LocalCleric/internal/chat"
)

// AIAssistant adapts the AI client to the orchestrator's assistant boundary.
type AIAssistant struct {
	client *ai.Client
}

func NewAIAssistant(client *ai.Client) *AIAssistant {
	return &AIAssistant{client: client}
}

func (a *AIAssistant) Respond(ctx context.Context, message string) (chat.Reply, error) {
	reply, err := a.client.Respond(ctx, message)
	if err != nil {
		return chat.Reply{}, err
	}

	out := chat.Reply{Response: reply.Response}
	if reply.EventDetails != nil {
		out.Event = &chat.Directive{
			Title: reply.EventDetails.Title,
			Date:  reply.EventDetails.Date,
			Time:  reply.EventDetails.Time,
		}
	}
	return out, nil
}
