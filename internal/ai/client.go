package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
)

type Client struct {
	client *openai.Client
	model  string
}

func New(apiKey, baseURL, model string) *Client {
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = baseURL

	return &Client{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

func (c *Client) SetModel(model string) {
	c.model = model
}

// EventDetails is the structured event-creation directive the assistant may
// embed in a reply.
type EventDetails struct {
	Title string `json:"title"`
	Date  string `json:"date"`           // YYYY-MM-DD
	Time  string `json:"time,omitempty"` // h:mm AM/PM
}

// Reply is the assistant's structured output for one turn.
type Reply struct {
	Response     string        `json:"response"`
	EventDetails *EventDetails `json:"event_details,omitempty"`
	RawResponse  string        `json:"-"`
}

const systemPromptTemplate = `You are LocalCleric, a personal assistant with access to the user's calendar.

Current time: %s

Respond to the user conversationally in the "response" field. Keep replies concise and professional.

When the user asks you to schedule, book, or add something to their calendar, also fill in "event_details":
- title: a short name for the event
- date: the calendar date in YYYY-MM-DD format. Resolve relative phrasing ("tomorrow", "next Friday") against the current time above.
- time: the time of day as "h:mm AM/PM" (for example "2:30 PM"). Omit it if the user gave no time.

Only set "event_details" when the user clearly wants an event created. For everything else leave it out entirely.`

func getSystemPrompt() string {
	now := time.Now()
	return fmt.Sprintf(systemPromptTemplate, now.Format("2006-01-02 15:04 (Monday)"))
}

// JSON Schema for structured output
var replySchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"response": {
			"type": "string",
			"description": "The conversational reply shown to the user"
		},
		"event_details": {
			"type": ["object", "null"],
			"properties": {
				"title": {
					"type": "string",
					"description": "Short event title"
				},
				"date": {
					"type": "string",
					"description": "Event date in YYYY-MM-DD format"
				},
				"time": {
					"type": "string",
					"description": "Event time as h:mm AM/PM, empty if not given"
				}
			},
			"required": ["title", "date"],
			"additionalProperties": false,
			"description": "Present only when the user asked to schedule an event"
		}
	},
	"required": ["response"],
	"additionalProperties": false
}`)

// Respond sends one user message and returns the assistant's structured reply.
func (c *Client) Respond(ctx context.Context, userMessage string) (*Reply, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: getSystemPrompt(),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: userMessage,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "reply",
				Schema: replySchema,
				Strict: true,
			},
		},
		Temperature: 0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to call AI API: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from AI")
	}

	content := resp.Choices[0].Message.Content
	reply := &Reply{RawResponse: content}

	if err := json.Unmarshal([]byte(content), reply); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w", err)
	}

	return reply, nil
}
