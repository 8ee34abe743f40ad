package models

import "time"

type Event struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Date        time.Time `json:"date"`           // always local midnight of the intended day
	Time        string    `json:"time,omitempty"` // display string such as "2:30 PM", empty if unset
	AIScheduled bool      `json:"ai_scheduled"`
	CreatedAt   time.Time `json:"created_at"`
}
