package itinerary

import (
	"strings"

	"github.com/FACorreiaa/wahkip/internal/types"
)

const (
	FallbackTransportNotes = "Use local taxis or walk between venues."
	FallbackCostEstimate   = "$50-$150 USD"

	placeholderMorning   = "Coffee at a local spot and a stroll through a central area"
	placeholderMidday    = "Lunch at a local market"
	placeholderAfternoon = "Visit a museum or heritage site"
	placeholderEvening   = "Dinner and live entertainment"

	fallbackPicksWhenUnmatched = 4
)

type bucket struct {
	tags  []string
	limit int
	items []types.Event
}

func (b *bucket) accepts(tags map[string]struct{}) bool {
	if len(b.items) >= b.limit {
		return false
	}
	for _, t := range b.tags {
		if _, ok := tags[t]; ok {
			return true
		}
	}
	return false
}

// Fallback synthesizes an itinerary from the candidate events alone. Events
// are bucketed in input order, each into the first bucket with room whose
// tags it carries: up to 2 music, 1 food, 1 culture, 1 wellness.
func Fallback(events []types.Event) RawItinerary {
	music := &bucket{tags: []string{"music"}, limit: 2}
	food := &bucket{tags: []string{"food"}, limit: 1}
	culture := &bucket{tags: []string{"culture", "art", "heritage"}, limit: 1}
	wellness := &bucket{tags: []string{"wellness"}, limit: 1}
	buckets := []*bucket{music, food, culture, wellness}

	for _, e := range events {
		tags := lowerTagSet(e.Tags)
		for _, b := range buckets {
			if b.accepts(tags) {
				b.items = append(b.items, e)
				break
			}
		}
	}

	afternoon := titleAt(culture.items, 0, "")
	if afternoon == "" {
		afternoon = titleAt(music.items, 1, placeholderAfternoon)
	}

	picks := make([]string, 0, 5)
	for _, b := range buckets {
		for _, e := range b.items {
			picks = append(picks, e.ID)
		}
	}
	if len(picks) == 0 {
		for i := 0; i < len(events) && i < fallbackPicksWhenUnmatched; i++ {
			picks = append(picks, events[i].ID)
		}
	}

	cost := FallbackCostEstimate
	return RawItinerary{
		Morning:        []string{titleAt(wellness.items, 0, placeholderMorning)},
		Midday:         []string{titleAt(food.items, 0, placeholderMidday)},
		Afternoon:      []string{afternoon},
		Evening:        []string{titleAt(music.items, 0, placeholderEvening)},
		TransportNotes: FallbackTransportNotes,
		CostEstimate:   CostEstimate{Text: &cost},
		Picks:          picks,
	}
}

func titleAt(events []types.Event, i int, placeholder string) string {
	if i < len(events) && events[i].Title != "" {
		return events[i].Title
	}
	return placeholder
}

func lowerTagSet(tags []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		set[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}
	return set
}
