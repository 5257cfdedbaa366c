package dto

import "time"

type ConnectResponse struct {
	AuthURL string `json:"auth_url"`
}

type ConnectionStatusResponse struct {
	Connected     bool      `json:"connected"`
	Provider      string    `json:"provider,omitempty"`
	CalendarEmail string    `json:"calendar_email,omitempty"`
	ExpiresAt     time.Time `json:"expires_at,omitempty"`
}

type CalendarEventRequest struct {
	Title       string
	Description string
	StartTime   time.Time
	EndTime     time.Time
	Attendees   []string
}
