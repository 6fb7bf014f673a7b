package recommendations

import (
	"math"
	"math/rand"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/FACorreiaa/wahkip/internal/types"
)

func TestVectors(t *testing.T) {
	convey.Convey("Given tag vectors", t, func() {
		convey.Convey("When normalizing a non-zero vector", func() {
			v := NormalizeVector(types.TagVector{"music": 3, "food": 4})

			convey.Convey("Then it has unit length", func() {
				convey.So(v["music"], convey.ShouldAlmostEqual, 0.6, 1e-9)
				convey.So(v["food"], convey.ShouldAlmostEqual, 0.8, 1e-9)
				convey.So(magnitude(v), convey.ShouldAlmostEqual, 1.0, 1e-9)
			})
		})

		convey.Convey("When normalizing a zero vector", func() {
			zero := types.TagVector{"music": 0}
			convey.Convey("Then it is returned unchanged", func() {
				convey.So(NormalizeVector(zero), convey.ShouldResemble, zero)
				convey.So(NormalizeVector(types.TagVector{}), convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When comparing vectors with disjoint keys", func() {
			sim := CosineSimilarity(types.TagVector{"music": 1}, types.TagVector{"food": 1})
			convey.So(sim, convey.ShouldEqual, 0)
		})

		convey.Convey("When either side has zero magnitude", func() {
			convey.So(CosineSimilarity(types.TagVector{}, types.TagVector{"food": 1}), convey.ShouldEqual, 0)
			convey.So(CosineSimilarity(types.TagVector{"food": 1}, types.TagVector{"food": 0}), convey.ShouldEqual, 0)
		})

		convey.Convey("When building an event vector", func() {
			v := EventVector(types.Event{Tags: []string{"music", "food", "music"}})
			convey.Convey("Then duplicate tags count once", func() {
				convey.So(len(v), convey.ShouldEqual, 2)
				convey.So(v["music"], convey.ShouldAlmostEqual, 1/math.Sqrt2, 1e-9)
			})
		})
	})
}

func TestMatchScore(t *testing.T) {
	convey.Convey("Given a scorer", t, func() {
		convey.Convey("Then an empty user vector scores neutral", func() {
			convey.So(MatchScore(types.TagVector{}, EventVector(types.Event{Tags: []string{"music"}})), convey.ShouldEqual, NeutralScore)
			convey.So(MatchScore(types.TagVector{"music": 0}, EventVector(types.Event{Tags: []string{"music"}})), convey.ShouldEqual, NeutralScore)
		})

		convey.Convey("Then a vector matches itself at 100", func() {
			v := types.TagVector{"music": 2.5, "food": 1, "art": 0.3}
			convey.So(MatchScore(v, v), convey.ShouldEqual, 100)
		})

		convey.Convey("Then an untagged event scores 0 for a user with signal", func() {
			convey.So(MatchScore(types.TagVector{"music": 1}, EventVector(types.Event{})), convey.ShouldEqual, 0)
		})

		convey.Convey("Then scores of random vectors stay within 0..100", func() {
			rng := rand.New(rand.NewSource(99))
			tags := []string{"music", "food", "art", "wellness", "nightlife"}
			for i := 0; i < 200; i++ {
				user := types.TagVector{}
				event := types.TagVector{}
				for _, tag := range tags {
					if rng.Intn(2) == 0 {
						user[tag] = rng.Float64() * 5
					}
					if rng.Intn(2) == 0 {
						event[tag] = 1
					}
				}
				score := MatchScore(user, NormalizeVector(event))
				convey.So(score, convey.ShouldBeBetweenOrEqual, 0, 100)
				sim := CosineSimilarity(user, event)
				convey.So(sim, convey.ShouldBeBetweenOrEqual, 0, 1+1e-9)
			}
		})
	})
}

func TestRank(t *testing.T) {
	convey.Convey("Given events and a user who likes music", t, func() {
		events := []types.Event{
			{ID: "food", Tags: []string{"food"}},
			{ID: "jazz", Tags: []string{"music"}},
			{ID: "mixed", Tags: []string{"music", "food"}},
			{ID: "jam", Tags: []string{"music"}},
		}
		user := types.TagVector{"music": 1.925, "nightlife": 0.5, "food": 0.2, "art": 0.5}

		convey.Convey("When ranking with explanations", func() {
			items := Rank(events, user, true)

			convey.Convey("Then the best matches come first and ties keep input order", func() {
				ids := make([]string, len(items))
				for i, m := range items {
					ids[i] = m.ID
				}
				convey.So(ids, convey.ShouldResemble, []string{"jazz", "jam", "mixed", "food"})
			})

			convey.Convey("Then strong matches carry the top three tags", func() {
				convey.So(items[0].Why, convey.ShouldNotBeNil)
				convey.So(*items[0].Why, convey.ShouldEqual, "Matches your interests in music, art, nightlife")
				convey.So(items[len(items)-1].Why, convey.ShouldBeNil)
			})
		})

		convey.Convey("When ranking without explanations", func() {
			for _, m := range Rank(events, user, false) {
				convey.So(m.Why, convey.ShouldBeNil)
			}
		})

		convey.Convey("When the user has no signal", func() {
			items := Rank(events, types.TagVector{}, true)
			convey.Convey("Then every event is neutral and the order is kept", func() {
				for i, m := range items {
					convey.So(m.Match, convey.ShouldEqual, NeutralScore)
					convey.So(m.ID, convey.ShouldEqual, events[i].ID)
					convey.So(m.Why, convey.ShouldBeNil)
				}
			})
		})
	})
}

func TestTopTags(t *testing.T) {
	convey.Convey("Given a vector with tied weights", t, func() {
		v := types.TagVector{"b": 1, "a": 1, "c": 2, "d": 0.5}
		convey.So(TopTags(v, 3), convey.ShouldResemble, []string{"c", "a", "b"})
		convey.So(TopTags(v, 10), convey.ShouldHaveLength, 4)
	})
}
