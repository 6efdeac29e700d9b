package model

import "time"

// GeneratedTask is a task returned by the generation service, as kept in the
// history table.
type GeneratedTask struct {
	ID        int64     `json:"id"`
	Topic     string    `json:"topic"`
	Type      Type      `json:"type"`
	Task      Task      `json:"task"`
	CreatedAt time.Time `json:"created_at"`
}
