package itinerary

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/wahkip/internal/types"
)

func validPayload() map[string]any {
	return map[string]any{
		"morning":        []string{"Coffee"},
		"midday":         []string{"Food Fair"},
		"afternoon":      []string{},
		"evening":        []string{"Jazz Night"},
		"transportNotes": "Walk",
		"costEstimate":   map[string]any{"low": 50, "high": 150, "currency": "USD"},
		"picks":          []string{"e1", "e2"},
	}
}

func encode(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func strs(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("item-%d", i)
	}
	return out
}

func TestValidateItinerary(t *testing.T) {
	t.Run("valid object cost", func(t *testing.T) {
		it, err := ValidateItinerary(encode(t, validPayload()))
		require.NoError(t, err)
		assert.Equal(t, []string{"Coffee"}, it.Morning)
		assert.Equal(t, []string{}, it.Afternoon)
		require.NotNil(t, it.CostEstimate.Range)
		assert.Equal(t, 50.0, it.CostEstimate.Range.Low)
		assert.Equal(t, 150.0, it.CostEstimate.Range.High)
		assert.Equal(t, []string{"e1", "e2"}, it.Picks)
	})

	t.Run("string cost", func(t *testing.T) {
		p := validPayload()
		p["costEstimate"] = "about $40"
		it, err := ValidateItinerary(encode(t, p))
		require.NoError(t, err)
		require.NotNil(t, it.CostEstimate.Text)
		assert.Equal(t, "about $40", *it.CostEstimate.Text)
	})

	t.Run("currency defaults to USD", func(t *testing.T) {
		p := validPayload()
		p["costEstimate"] = map[string]any{"low": 10, "high": 20}
		it, err := ValidateItinerary(encode(t, p))
		require.NoError(t, err)
		assert.Equal(t, "USD", it.CostEstimate.Range.Currency)
	})

	t.Run("unknown keys are ignored", func(t *testing.T) {
		p := validPayload()
		p["weather"] = "sunny"
		_, err := ValidateItinerary(encode(t, p))
		assert.NoError(t, err)
	})

	tests := []struct {
		name   string
		mutate func(p map[string]any)
		field  string
		reason string
	}{
		{"missing morning", func(p map[string]any) { delete(p, "morning") }, "morning", ReasonMissing},
		{"null evening", func(p map[string]any) { p["evening"] = nil }, "evening", ReasonWrongType},
		{"slot of numbers", func(p map[string]any) { p["midday"] = []int{1, 2} }, "midday", ReasonWrongType},
		{"null slot item", func(p map[string]any) { p["morning"] = []any{nil} }, "morning", ReasonWrongType},
		{"null pick among ids", func(p map[string]any) { p["picks"] = []any{"e1", nil} }, "picks", ReasonWrongType},
		{"missing transport notes", func(p map[string]any) { delete(p, "transportNotes") }, "transportNotes", ReasonMissing},
		{"numeric transport notes", func(p map[string]any) { p["transportNotes"] = 3 }, "transportNotes", ReasonWrongType},
		{"missing cost", func(p map[string]any) { delete(p, "costEstimate") }, "costEstimate", ReasonMissing},
		{"numeric cost", func(p map[string]any) { p["costEstimate"] = 100 }, "costEstimate", ReasonWrongType},
		{"cost without high", func(p map[string]any) { p["costEstimate"] = map[string]any{"low": 1} }, "costEstimate.high", ReasonMissing},
		{"cost low as string", func(p map[string]any) { p["costEstimate"] = map[string]any{"low": "1", "high": 2} }, "costEstimate.low", ReasonWrongType},
		{"negative low", func(p map[string]any) { p["costEstimate"] = map[string]any{"low": -1, "high": 2} }, "costEstimate.low", ReasonNegative},
		{"missing picks", func(p map[string]any) { delete(p, "picks") }, "picks", ReasonMissing},
		{"seven morning items", func(p map[string]any) { p["morning"] = strs(7) }, "morning", "exceeds max length 6"},
		{"thirteen picks", func(p map[string]any) { p["picks"] = strs(13) }, "picks", "exceeds max length 12"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := validPayload()
			tc.mutate(p)
			_, err := ValidateItinerary(encode(t, p))
			var sErr *SchemaError
			require.ErrorAs(t, err, &sErr)
			assert.Equal(t, tc.field, sErr.Field)
			assert.Equal(t, tc.reason, sErr.Reason)
		})
	}

	t.Run("limits are inclusive", func(t *testing.T) {
		p := validPayload()
		p["evening"] = strs(6)
		p["picks"] = strs(12)
		_, err := ValidateItinerary(encode(t, p))
		assert.NoError(t, err)
	})

	for _, body := range []string{`[]`, `null`, `"text"`, `42`} {
		t.Run("root "+body, func(t *testing.T) {
			_, err := ValidateItinerary(json.RawMessage(body))
			var sErr *SchemaError
			require.ErrorAs(t, err, &sErr)
			assert.Equal(t, "$", sErr.Field)
		})
	}
}

func TestNormalizeCost(t *testing.T) {
	text := "$20 per person"
	tests := []struct {
		name string
		in   CostEstimate
		want string
	}{
		{"range", CostEstimate{Range: &CostRange{Low: 50, High: 150, Currency: "USD"}}, "$50-$150 USD"},
		{"fractional", CostEstimate{Range: &CostRange{Low: 12.5, High: 30, Currency: "JMD"}}, "$12.5-$30 JMD"},
		{"blank currency", CostEstimate{Range: &CostRange{Low: 0, High: 0}}, "$0-$0 USD"},
		{"text passes through", CostEstimate{Text: &text}, text},
		{"unset", CostEstimate{}, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeCost(tc.in))
		})
	}
}

func TestCostEstimateMarshalJSON(t *testing.T) {
	text := "cheap"
	b, err := json.Marshal(CostEstimate{Text: &text})
	require.NoError(t, err)
	assert.JSONEq(t, `"cheap"`, string(b))

	b, err = json.Marshal(CostEstimate{Range: &CostRange{Low: 1, High: 2, Currency: "USD"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"low":1,"high":2,"currency":"USD"}`, string(b))
}

func TestFilterPicks(t *testing.T) {
	candidates := []types.Event{{ID: "e1"}, {ID: "e2"}, {ID: "e3"}}

	assert.Equal(t, []string{"e3", "e1"}, FilterPicks([]string{"e3", "ghost", "e1"}, candidates))
	assert.Equal(t, []string{}, FilterPicks(nil, candidates))
	assert.Equal(t, []string{}, FilterPicks([]string{"e1"}, nil))
}

// Every filtered pick belongs to the candidate set and keeps its relative
// order from the input.
func TestFilterPicksProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(20250601))
	ids := func(n int, prefix string) []string {
		out := make([]string, n)
		for i := range out {
			out[i] = fmt.Sprintf("%s%d", prefix, rng.Intn(20))
		}
		return out
	}

	for run := 0; run < 500; run++ {
		candIDs := ids(rng.Intn(10), "e")
		candidates := make([]types.Event, len(candIDs))
		allowed := map[string]bool{}
		for i, id := range candIDs {
			candidates[i] = types.Event{ID: id}
			allowed[id] = true
		}
		picks := append(ids(rng.Intn(15), "e"), ids(rng.Intn(5), "ghost")...)
		rng.Shuffle(len(picks), func(i, j int) { picks[i], picks[j] = picks[j], picks[i] })

		got := FilterPicks(picks, candidates)
		require.NotNil(t, got)

		next := 0
		for _, id := range got {
			require.True(t, allowed[id], "pick %q is not a candidate", id)
			for next < len(picks) && picks[next] != id {
				next++
			}
			require.Less(t, next, len(picks), "order of picks not preserved")
			next++
		}

		want := 0
		for _, id := range picks {
			if allowed[id] {
				want++
			}
		}
		assert.Len(t, got, want)
	}
}

func TestNormalize(t *testing.T) {
	raw := RawItinerary{
		Morning:        []string{"Coffee"},
		TransportNotes: "Bus",
		CostEstimate:   CostEstimate{Range: &CostRange{Low: 10, High: 25, Currency: "USD"}},
		Picks:          []string{"e1", "ghost-id"},
	}
	it := Normalize(raw, []types.Event{{ID: "e1"}})

	assert.Equal(t, []string{"e1"}, it.Picks)
	assert.Equal(t, []string{}, it.Midday)
	assert.Equal(t, "Bus", it.TransportNotes)
	assert.Regexp(t, regexp.MustCompile(`^\$\d+(\.\d+)?-\$\d+(\.\d+)? USD$`), it.CostEstimate)
}
