package types

import (
	"time"
)

// EventCapacity is the expected crowd size of an event.
type EventCapacity string

const (
	CapacityLow    EventCapacity = "low"
	CapacityMedium EventCapacity = "medium"
	CapacityHigh   EventCapacity = "high"
)

// Event is a local happening in a city. The composition pipeline only reads
// ID, Title, DateStart and Tags.
type Event struct {
	ID          string         `json:"id"`
	VenueID     *string        `json:"venue_id,omitempty"`
	Title       string         `json:"title"`
	Description *string        `json:"description,omitempty"`
	DateStart   time.Time      `json:"date_start"`
	DateEnd     *time.Time     `json:"date_end,omitempty"`
	Tags        []string       `json:"tags"`
	City        string         `json:"city"`
	ImageURL    *string        `json:"image_url,omitempty"`
	Capacity    *EventCapacity `json:"capacity,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// EventFilter holds the search parameters accepted by the events listing.
type EventFilter struct {
	City  string
	From  *time.Time
	To    *time.Time
	Tags  []string
	Query string
	Page  int
	Limit int
}

// EventsPage is one page of search results.
type EventsPage struct {
	Items []Event `json:"items"`
	Page  int     `json:"page"`
	Limit int     `json:"limit"`
	Total int     `json:"total"`
}

// CreateEventRequest is the body of POST /events.
type CreateEventRequest struct {
	Title       string     `json:"title" validate:"required,min=1"`
	Description *string    `json:"description,omitempty"`
	DateStart   time.Time  `json:"date_start" validate:"required"`
	DateEnd     *time.Time `json:"date_end,omitempty"`
	City        string     `json:"city" validate:"required,min=1"`
	Tags        []string   `json:"tags"`
	Capacity    *string    `json:"capacity,omitempty" validate:"omitempty,oneof=low medium high"`
}
