package domain

import "time"

// Layouts used for the textual date and hour of a schedule slot.
const (
	DateLayout = "02/01/2006"
	HourLayout = "15:04"
)

// Schedule is a booked slot. No two schedules share the same Date and Hour.
type Schedule struct {
	ID        string
	Date      string
	Hour      string
	Title     string
	Body      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
