package types

import (
	"time"

	"github.com/google/uuid"
)

// InteractionAction is the kind of signal a user gave on an event.
type InteractionAction string

const (
	ActionView InteractionAction = "view"
	ActionLike InteractionAction = "like"
	ActionSave InteractionAction = "save"
)

// UserProfile is the anonymous profile bound to a session id.
type UserProfile struct {
	ID        uuid.UUID `json:"id"`
	SessionID string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
}

// UserInterest is one (user, tag) weight row.
type UserInterest struct {
	UserID    uuid.UUID `json:"user_id"`
	Tag       string    `json:"tag"`
	Weight    float64   `json:"weight"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InteractionRequest is the body of POST /user/interactions.
type InteractionRequest struct {
	SessionID string            `json:"session_id" validate:"required,max=200"`
	EventTags []string          `json:"event_tags" validate:"required,min=1,dive,required"`
	Action    InteractionAction `json:"action,omitempty" validate:"omitempty,oneof=view like save"`
}
