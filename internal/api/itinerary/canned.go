package itinerary

import "strings"

// Mode selects between live provider composition and canned itineraries.
type Mode string

const (
	ModeLive   Mode = "live"
	ModeCanned Mode = "canned"
)

// ParseMode maps a configuration value onto a Mode, defaulting to live.
func ParseMode(s string) Mode {
	if strings.EqualFold(strings.TrimSpace(s), string(ModeCanned)) {
		return ModeCanned
	}
	return ModeLive
}

// CannedSelector picks a prepared itinerary for a free-text description.
type CannedSelector func(description string) RawItinerary

func textCost(s string) CostEstimate { return CostEstimate{Text: &s} }

func musicAndCulture() RawItinerary {
	return RawItinerary{
		Morning: []string{
			"Jamaican breakfast at Devon House Bakery (7:30 AM)",
			"Guided tour of reggae history at the Bob Marley Museum (9:00 AM)",
		},
		Midday: []string{
			"Jerk chicken at Scotchies (12:00 PM)",
			"Local art at the National Gallery of Jamaica (1:30 PM)",
		},
		Afternoon: []string{
			"Live reggae session at Tuff Gong Studios (3:00 PM)",
			"Stroll through Emancipation Park (4:30 PM)",
		},
		Evening: []string{
			"Dinner at Tracks & Records (7:00 PM)",
			"Live music at Dub Club (9:00 PM)",
		},
		TransportNotes: "Use Kingston's public buses or taxis. Most venues are within 15-20 minutes of each other.",
		CostEstimate:   textCost("$80-$120 USD"),
	}
}

func foodAndMarkets() RawItinerary {
	return RawItinerary{
		Morning: []string{
			"Fresh produce at Coronation Market (7:00 AM)",
			"Coffee and pastries at Café Blue (9:00 AM)",
		},
		Midday: []string{
			"Cooking class at a local studio (11:00 AM)",
			"Lunch at Gloria's for Jamaican classics (1:00 PM)",
		},
		Afternoon: []string{
			"Hope Botanical Gardens (2:30 PM)",
			"Street food at Half Way Tree (4:00 PM)",
		},
		Evening: []string{
			"Dinner in New Kingston (6:30 PM)",
			"Evening stroll through New Kingston (8:00 PM)",
		},
		TransportNotes: "Markets are best reached by taxi. Venues in New Kingston are walkable.",
		CostEstimate:   textCost("$60-$90 USD"),
	}
}

func wellnessAndNature() RawItinerary {
	return RawItinerary{
		Morning: []string{
			"Sunrise yoga at Emancipation Park (6:30 AM)",
			"Healthy breakfast at Life Yard (8:30 AM)",
		},
		Midday: []string{
			"Blue Mountains coffee plantation tour (10:00 AM)",
			"Lunch with mountain views at Strawberry Hill (1:00 PM)",
		},
		Afternoon: []string{
			"Nature walk at Holywell National Park (2:30 PM)",
			"Spa treatment (4:00 PM)",
		},
		Evening: []string{
			"Meditation session at Hope Gardens (6:00 PM)",
			"Light dinner at Café Blue (7:30 PM)",
		},
		TransportNotes: "The Blue Mountains need private transport, about a 2-hour drive. Kingston venues are walkable.",
		CostEstimate:   textCost("$120-$180 USD"),
	}
}

// DefaultCannedSelector matches description keywords against three prepared
// itineraries and falls back to the music one.
func DefaultCannedSelector(description string) RawItinerary {
	desc := strings.ToLower(description)
	switch {
	case containsAny(desc, "music", "reggae", "culture"):
		return musicAndCulture()
	case containsAny(desc, "food", "market", "cooking"):
		return foodAndMarkets()
	case containsAny(desc, "wellness", "nature", "relax", "yoga"):
		return wellnessAndNature()
	default:
		return musicAndCulture()
	}
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
