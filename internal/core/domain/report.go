package domain

import "time"

// Report is a user-submitted safety report. The payload is free-form JSON.
type Report struct {
	ID         string         `json:"id"`
	Payload    map[string]any `json:"payload"`
	ReceivedAt time.Time      `json:"received_at"`
}
