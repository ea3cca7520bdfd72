package models

import "time"

// Notice is a user-visible, non-fatal failure of the profile pipeline.
type Notice struct {
	Message    string    `json:"message"`
	Status     string    `json:"status,omitempty"`
	Generation uint64    `json:"generation"`
	At         time.Time `json:"at"`
}
