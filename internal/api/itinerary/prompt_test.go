package itinerary

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/FACorreiaa/wahkip/internal/types"
)

func eventsFixture(n int) []types.Event {
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	out := make([]types.Event, n)
	for i := range out {
		out[i] = types.Event{
			ID:        fmt.Sprintf("evt-%02d", i),
			Title:     fmt.Sprintf("Event %d", i),
			DateStart: base.Add(time.Duration(i) * time.Hour),
			Tags:      []string{"music"},
			City:      "Kingston",
		}
	}
	return out
}

func TestEventLine(t *testing.T) {
	jamaica := time.FixedZone("EST", -5*60*60)
	e := types.Event{
		ID:        "e1",
		Title:     "Jazz Night",
		DateStart: time.Date(2025, 6, 1, 20, 0, 0, 0, jamaica),
		Tags:      []string{"music", "nightlife"},
	}
	assert.Equal(t, "e1|2025-06-02T01:00:00Z|Jazz Night|music/nightlife", EventLine(e))

	e.Tags = nil
	assert.Equal(t, "e1|2025-06-02T01:00:00Z|Jazz Night|", EventLine(e))
}

func TestBuildPrompt(t *testing.T) {
	events := eventsFixture(15)

	t.Run("deterministic", func(t *testing.T) {
		a := BuildPrompt("Kingston", "2025-06-01", events, "music and food")
		b := BuildPrompt("Kingston", "2025-06-01", events, "music and food")
		assert.Equal(t, a, b)
	})

	t.Run("lists only the first twelve events in order", func(t *testing.T) {
		p := BuildPrompt("Kingston", "2025-06-01", events, "")
		for i := 0; i < MaxPromptEvents; i++ {
			assert.Contains(t, p, EventLine(events[i]))
		}
		assert.NotContains(t, p, "evt-12")
		assert.Less(t, strings.Index(p, "evt-00"), strings.Index(p, "evt-11"))
	})

	t.Run("states the contract", func(t *testing.T) {
		p := BuildPrompt("Kingston", "2025-06-01", events[:1], "a quiet night")
		assert.Contains(t, p, "City: Kingston")
		assert.Contains(t, p, "Date: 2025-06-01")
		assert.Contains(t, p, `"a quiet night"`)
		assert.Contains(t, p, `"picks": string[]`)
		assert.Contains(t, p, "subset of the event ids")
		assert.Contains(t, p, "ONLY JSON")
	})

	t.Run("does not modify the input", func(t *testing.T) {
		before := len(events)
		_ = BuildPrompt("Kingston", "2025-06-01", events, "")
		assert.Len(t, events, before)
	})
}
