package recommendations

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/FACorreiaa/wahkip/internal/types"
)

const (
	// NeutralScore is given to every event when the user has no signal yet.
	NeutralScore   = 50
	explainAbove   = 60
	explainTopTags = 3
)

// NormalizeVector scales v to unit length. A zero vector is returned
// unchanged.
func NormalizeVector(v types.TagVector) types.TagVector {
	mag := magnitude(v)
	if mag == 0 {
		return v
	}
	out := make(types.TagVector, len(v))
	for k, w := range v {
		out[k] = w / mag
	}
	return out
}

func magnitude(v types.TagVector) float64 {
	var sum float64
	for _, w := range v {
		sum += w * w
	}
	return math.Sqrt(sum)
}

// CosineSimilarity compares a and b over the union of their keys. It is 0
// when either vector has zero magnitude.
func CosineSimilarity(a, b types.TagVector) float64 {
	var dot float64
	for k, av := range a {
		dot += av * b[k]
	}
	magA, magB := magnitude(a), magnitude(b)
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (magA * magB)
}

// EventVector is the normalized one-hot encoding of an event's tags.
func EventVector(e types.Event) types.TagVector {
	v := make(types.TagVector, len(e.Tags))
	for _, tag := range e.Tags {
		v[tag] = 1
	}
	return NormalizeVector(v)
}

// MatchScore maps the similarity of user and event vectors onto 0..100.
// Users without signal score NeutralScore.
func MatchScore(user, event types.TagVector) int {
	if magnitude(user) == 0 {
		return NeutralScore
	}
	sim := CosineSimilarity(user, event) * 100
	return int(math.Round(math.Max(0, math.Min(100, sim))))
}

// Rank scores events against the user vector and orders them by score,
// highest first. Equal scores keep their input order.
func Rank(events []types.Event, user types.TagVector, explain bool) []types.Match {
	user = NormalizeVector(user)
	hasSignal := magnitude(user) > 0

	var why *string
	if explain && hasSignal {
		s := fmt.Sprintf("Matches your interests in %s", strings.Join(TopTags(user, explainTopTags), ", "))
		why = &s
	}

	items := make([]types.Match, 0, len(events))
	for _, e := range events {
		m := types.Match{Event: e, Match: MatchScore(user, EventVector(e))}
		if why != nil && m.Match > explainAbove {
			m.Why = why
		}
		items = append(items, m)
	}
	slices.SortStableFunc(items, func(a, b types.Match) int {
		return cmp.Compare(b.Match, a.Match)
	})
	return items
}

// TopTags returns up to n tags with the highest weight. Ties are broken by
// tag name.
func TopTags(v types.TagVector, n int) []string {
	tags := make([]string, 0, len(v))
	for k := range v {
		tags = append(tags, k)
	}
	slices.SortFunc(tags, func(a, b string) int {
		if c := cmp.Compare(v[b], v[a]); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	if len(tags) > n {
		tags = tags[:n]
	}
	return tags
}
