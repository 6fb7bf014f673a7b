package types

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ItineraryWarning is the informational code attached to a composed
// itinerary. An empty value means the provider answer was used as-is.
type ItineraryWarning string

const (
	WarningNone             ItineraryWarning = ""
	WarningNoEventsFallback ItineraryWarning = "NO_EVENTS_FALLBACK"
	WarningAITimeout        ItineraryWarning = "AI_TIMEOUT"
	WarningAIQuota          ItineraryWarning = "AI_QUOTA"
	WarningAIError          ItineraryWarning = "AI_ERROR"
	WarningAIFallback       ItineraryWarning = "AI_FALLBACK"
)

// NoKeyWarning returns NO_<PROVIDER>_KEY for the given provider name.
func NoKeyWarning(provider string) ItineraryWarning {
	return ItineraryWarning("NO_" + strings.ToUpper(provider) + "_KEY")
}

// Itinerary is a one-day plan split into four time-of-day slots.
// CostEstimate is always the normalized display string.
type Itinerary struct {
	Morning        []string `json:"morning"`
	Midday         []string `json:"midday"`
	Afternoon      []string `json:"afternoon"`
	Evening        []string `json:"evening"`
	TransportNotes string   `json:"transportNotes"`
	CostEstimate   string   `json:"costEstimate"`
	Picks          []string `json:"picks"`
}

// ComposeResult is what the composition pipeline hands back to its caller.
type ComposeResult struct {
	Itinerary Itinerary        `json:"itinerary"`
	Warning   ItineraryWarning `json:"warning,omitempty"`
}

// ItineraryRequest is the body of POST /itinerary.
type ItineraryRequest struct {
	City        string `json:"city" validate:"required"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Description string `json:"description,omitempty" validate:"max=2000"`
}

// ItineraryResponse is returned by POST /itinerary.
type ItineraryResponse struct {
	Itinerary   Itinerary        `json:"itinerary"`
	Picks       []string         `json:"picks"`
	ItineraryID *uuid.UUID       `json:"itinerary_id,omitempty"`
	Warning     ItineraryWarning `json:"warning,omitempty"`
}

// StoredItinerary is a persisted itinerary row.
type StoredItinerary struct {
	ID        uuid.UUID       `json:"id"`
	RequestID uuid.UUID       `json:"request_id"`
	JSON      json.RawMessage `json:"json"`
	Picks     []string        `json:"picks"`
	CreatedAt time.Time       `json:"created_at"`
}

// ProviderStatus reports whether a text-generation provider has a credential
// configured. Key material is never exposed.
type ProviderStatus struct {
	Name       string `json:"name"`
	Configured bool   `json:"configured"`
	Role       string `json:"role"`
}
