package types

// TagVector maps a tag to its weight.
type TagVector map[string]float64

// Match is an event annotated with its personalization score. The event
// fields are flattened next to match and why when encoded.
type Match struct {
	Event
	Match int     `json:"match"`
	Why   *string `json:"why,omitempty"`
}

// RecommendationsResponse is the scorer output.
type RecommendationsResponse struct {
	Items []Match `json:"items"`
}

// RecommendationsQuery holds the GET /recommendations parameters.
type RecommendationsQuery struct {
	City      string
	Date      string
	SessionID string
	Explain   bool
}
