package client

import "time"

// OKResponse is the body of the lifecycle POST endpoints.
type OKResponse struct {
	OK bool `json:"ok"`
}

// StatusResponse is the body of GET /status.
type StatusResponse struct {
	Status    string    `json:"status"`
	CheckedAt time.Time `json:"checked_at"`
}
