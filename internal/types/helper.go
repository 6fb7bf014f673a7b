package types

import (
	"time"

	"github.com/google/uuid"
)

// Helper is a local guide offering services in a city.
type Helper struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	City      string    `json:"city"`
	Langs     []string  `json:"langs"`
	Skills    []string  `json:"skills"`
	RateMin   *float64  `json:"rate_min,omitempty"`
	RateMax   *float64  `json:"rate_max,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Whatsapp  *string   `json:"whatsapp,omitempty"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created_at"`
}

// RegisterHelperRequest is the body of POST /helpers/register.
type RegisterHelperRequest struct {
	Name     string   `json:"name" validate:"required"`
	City     string   `json:"city" validate:"required"`
	Langs    []string `json:"langs,omitempty"`
	Skills   []string `json:"skills,omitempty"`
	RateMin  *float64 `json:"rate_min,omitempty" validate:"omitempty,gte=0"`
	RateMax  *float64 `json:"rate_max,omitempty" validate:"omitempty,gte=0"`
	Phone    *string  `json:"phone,omitempty"`
	Whatsapp *string  `json:"whatsapp,omitempty"`
}

// PriceRange is a suggested hourly price band.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// HelperSearchResponse is returned by GET /helpers/search.
type HelperSearchResponse struct {
	Items               []Helper   `json:"items"`
	SuggestedPriceRange PriceRange `json:"suggestedPriceRange"`
}

// HelperReview is a rating left for a helper.
type HelperReview struct {
	ID        uuid.UUID  `json:"id"`
	HelperID  uuid.UUID  `json:"helper_id"`
	UserID    *uuid.UUID `json:"user_id,omitempty"`
	Rating    int        `json:"rating"`
	Comment   *string    `json:"comment,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// CreateReviewRequest is the body of POST /helpers/reviews.
type CreateReviewRequest struct {
	HelperID  string  `json:"helper_id" validate:"required,uuid"`
	Rating    int     `json:"rating" validate:"required,min=1,max=5"`
	Comment   *string `json:"comment,omitempty"`
	SessionID string  `json:"session_id" validate:"required"`
}

// HelperSearchQuery filters GET /helpers/search.
type HelperSearchQuery struct {
	City   string
	Skills []string
}

// ReviewResponse is returned by POST /helpers/reviews.
type ReviewResponse struct {
	Success bool          `json:"success"`
	Review  *HelperReview `json:"review"`
}

// ReviewsResponse is returned by GET /helpers/reviews, newest first.
type ReviewsResponse struct {
	Reviews []HelperReview `json:"reviews"`
}
