package dto

import (
	"time"

	"github.com/spec-kit/barbershop-api/internal/domain"
)

// ScheduleRequest is the body of POST /schedule and PUT /schedule/:id.
type ScheduleRequest struct {
	Date  string  `json:"date"`
	Hour  string  `json:"hour"`
	Title *string `json:"title,omitempty"`
	Body  *string `json:"body,omitempty"`
}

// ScheduleResponse is an appointment as returned to clients.
type ScheduleResponse struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"`
	Hour      string    `json:"hour"`
	Title     string    `json:"title,omitempty"`
	Body      string    `json:"body,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewScheduleResponse(s domain.Schedule) ScheduleResponse {
	return ScheduleResponse{
		ID:        s.ID,
		Date:      s.Date,
		Hour:      s.Hour,
		Title:     s.Title,
		Body:      s.Body,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func NewScheduleListResponse(schedules []domain.Schedule) []ScheduleResponse {
	out := make([]ScheduleResponse, 0, len(schedules))
	for _, s := range schedules {
		out = append(out, NewScheduleResponse(s))
	}
	return out
}
