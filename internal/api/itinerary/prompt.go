package itinerary

import (
	"fmt"
	"strings"
	"time"

	"github.com/FACorreiaa/wahkip/internal/types"
)

// MaxPromptEvents is the number of candidate events listed in a prompt.
const MaxPromptEvents = 12

// BuildPrompt renders the composition prompt. It is pure: the same inputs
// always produce the same text. Events are listed in the order given.
func BuildPrompt(city, date string, events []types.Event, description string) string {
	if len(events) > MaxPromptEvents {
		events = events[:MaxPromptEvents]
	}

	lines := make([]string, 0, len(events))
	for _, e := range events {
		lines = append(lines, EventLine(e))
	}

	return strings.TrimSpace(fmt.Sprintf(`
You are Wahkip, an expert local travel planner that creates personalized day itineraries.

City: %s
Date: %s
User's description: %q

Available events (id|time|title|tags):
%s

Create a personalized itinerary based on what the user wants to experience. Match events that align with their description.

Return STRICT JSON matching:
{
  "morning": string[],
  "midday": string[],
  "afternoon": string[],
  "evening": string[],
  "transportNotes": string,
  "costEstimate": { "low": number, "high": number, "currency": "USD" },
  "picks": string[]
}

Rules:
- At most 6 entries per time slot and at most 12 picks
- "picks" must be a subset of the event ids listed above
- Reference event titles in the time slots
- If the user asks for a night out, emphasize the evening
- ONLY JSON. No markdown, no commentary.
`, city, date, description, strings.Join(lines, "\n")))
}

// EventLine renders one event as id|date_start|title|tag1/tag2.
func EventLine(e types.Event) string {
	return strings.Join([]string{
		e.ID,
		e.DateStart.UTC().Format(time.RFC3339),
		e.Title,
		strings.Join(e.Tags, "/"),
	}, "|")
}
