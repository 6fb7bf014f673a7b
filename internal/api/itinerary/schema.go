package itinerary

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/FACorreiaa/wahkip/internal/api"
	"github.com/FACorreiaa/wahkip/internal/types"
)

const defaultCurrency = "USD"

// Schema failure reasons.
const (
	ReasonMissing     = "missing required field"
	ReasonWrongType   = "wrong type"
	ReasonNegative    = "must be non-negative"
	reasonMaxLenFmt   = "exceeds max length %s"
	rootField         = "$"
	costEstimateField = "costEstimate"
)

// SchemaError identifies the first field of a provider payload that does not
// conform to the itinerary shape.
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("itinerary schema: %s: %s", e.Field, e.Reason)
}

// CostRange is the structured form of a cost estimate.
type CostRange struct {
	Low      float64 `json:"low" validate:"min=0"`
	High     float64 `json:"high" validate:"min=0"`
	Currency string  `json:"currency"`
}

// CostEstimate holds exactly one of a display string or a structured range.
type CostEstimate struct {
	Text  *string
	Range *CostRange
}

// MarshalJSON writes whichever form is set.
func (c CostEstimate) MarshalJSON() ([]byte, error) {
	switch {
	case c.Text != nil:
		return json.Marshal(*c.Text)
	case c.Range != nil:
		return json.Marshal(c.Range)
	default:
		return []byte("null"), nil
	}
}

// RawItinerary is an itinerary as produced by a provider, the canned
// selector or the fallback, before pick filtering and cost normalization.
type RawItinerary struct {
	Morning        []string     `json:"morning" validate:"max=6"`
	Midday         []string     `json:"midday" validate:"max=6"`
	Afternoon      []string     `json:"afternoon" validate:"max=6"`
	Evening        []string     `json:"evening" validate:"max=6"`
	TransportNotes string       `json:"transportNotes"`
	CostEstimate   CostEstimate `json:"costEstimate" validate:"-"`
	Picks          []string     `json:"picks" validate:"max=12"`
}

// ValidateItinerary checks raw against the itinerary shape. Lists longer than
// allowed are rejected, never truncated. Unknown keys are ignored.
func ValidateItinerary(raw json.RawMessage) (*RawItinerary, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return nil, &SchemaError{Field: rootField, Reason: ReasonWrongType}
	}

	var it RawItinerary
	slots := []struct {
		name string
		dst  *[]string
	}{
		{"morning", &it.Morning},
		{"midday", &it.Midday},
		{"afternoon", &it.Afternoon},
		{"evening", &it.Evening},
	}
	for _, slot := range slots {
		if err := decodeStrings(fields, slot.name, slot.dst); err != nil {
			return nil, err
		}
	}

	notes, ok := fields["transportNotes"]
	if !ok {
		return nil, &SchemaError{Field: "transportNotes", Reason: ReasonMissing}
	}
	if isNull(notes) || json.Unmarshal(notes, &it.TransportNotes) != nil {
		return nil, &SchemaError{Field: "transportNotes", Reason: ReasonWrongType}
	}

	cost, err := decodeCost(fields)
	if err != nil {
		return nil, err
	}
	it.CostEstimate = cost

	if err := decodeStrings(fields, "picks", &it.Picks); err != nil {
		return nil, err
	}

	if err := api.Validator().Struct(it); err != nil {
		return nil, schemaErrorFrom(err, "")
	}
	if it.CostEstimate.Range != nil {
		if err := api.Validator().Struct(it.CostEstimate.Range); err != nil {
			return nil, schemaErrorFrom(err, costEstimateField+".")
		}
	}
	return &it, nil
}

func decodeStrings(fields map[string]json.RawMessage, name string, dst *[]string) error {
	v, ok := fields[name]
	if !ok {
		return &SchemaError{Field: name, Reason: ReasonMissing}
	}
	var elems []*string
	if isNull(v) || json.Unmarshal(v, &elems) != nil {
		return &SchemaError{Field: name, Reason: ReasonWrongType}
	}
	out := make([]string, 0, len(elems))
	for _, e := range elems {
		if e == nil {
			return &SchemaError{Field: name, Reason: ReasonWrongType}
		}
		out = append(out, *e)
	}
	*dst = out
	return nil
}

func decodeCost(fields map[string]json.RawMessage) (CostEstimate, error) {
	v, ok := fields[costEstimateField]
	if !ok {
		return CostEstimate{}, &SchemaError{Field: costEstimateField, Reason: ReasonMissing}
	}
	v = bytes.TrimSpace(v)
	if len(v) == 0 {
		return CostEstimate{}, &SchemaError{Field: costEstimateField, Reason: ReasonWrongType}
	}

	switch v[0] {
	case '"':
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return CostEstimate{}, &SchemaError{Field: costEstimateField, Reason: ReasonWrongType}
		}
		return CostEstimate{Text: &s}, nil
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(v, &obj); err != nil {
			return CostEstimate{}, &SchemaError{Field: costEstimateField, Reason: ReasonWrongType}
		}
		var r CostRange
		for _, num := range []struct {
			key string
			dst *float64
		}{{"low", &r.Low}, {"high", &r.High}} {
			field := costEstimateField + "." + num.key
			raw, ok := obj[num.key]
			if !ok {
				return CostEstimate{}, &SchemaError{Field: field, Reason: ReasonMissing}
			}
			if isNull(raw) || json.Unmarshal(raw, num.dst) != nil {
				return CostEstimate{}, &SchemaError{Field: field, Reason: ReasonWrongType}
			}
		}
		if cur, ok := obj["currency"]; ok && !isNull(cur) {
			if err := json.Unmarshal(cur, &r.Currency); err != nil {
				return CostEstimate{}, &SchemaError{Field: costEstimateField + ".currency", Reason: ReasonWrongType}
			}
		}
		if r.Currency == "" {
			r.Currency = defaultCurrency
		}
		return CostEstimate{Range: &r}, nil
	default:
		return CostEstimate{}, &SchemaError{Field: costEstimateField, Reason: ReasonWrongType}
	}
}

func schemaErrorFrom(err error, prefix string) error {
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) || len(vErrs) == 0 {
		return &SchemaError{Field: rootField, Reason: err.Error()}
	}
	fe := vErrs[0]
	reason := fe.Tag()
	switch fe.Tag() {
	case "max":
		reason = fmt.Sprintf(reasonMaxLenFmt, fe.Param())
	case "min":
		reason = ReasonNegative
	}
	return &SchemaError{Field: prefix + fe.Field(), Reason: reason}
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

// formatAmount renders a number without trailing zeros.
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// NormalizeCost renders a cost estimate as a display string. Strings pass
// through untouched; ranges become "$<low>-$<high> <currency>".
func NormalizeCost(c CostEstimate) string {
	switch {
	case c.Text != nil:
		return *c.Text
	case c.Range != nil:
		currency := c.Range.Currency
		if currency == "" {
			currency = defaultCurrency
		}
		return fmt.Sprintf("$%s-$%s %s", formatAmount(c.Range.Low), formatAmount(c.Range.High), currency)
	default:
		return ""
	}
}

// FilterPicks keeps the picks that name a candidate event, in their original
// order. The result is never nil.
func FilterPicks(picks []string, candidates []types.Event) []string {
	allowed := make(map[string]struct{}, len(candidates))
	for _, e := range candidates {
		allowed[e.ID] = struct{}{}
	}
	out := make([]string, 0, len(picks))
	for _, id := range picks {
		if _, ok := allowed[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// Normalize filters picks against candidates and flattens the cost estimate.
func Normalize(raw RawItinerary, candidates []types.Event) types.Itinerary {
	return types.Itinerary{
		Morning:        nonNil(raw.Morning),
		Midday:         nonNil(raw.Midday),
		Afternoon:      nonNil(raw.Afternoon),
		Evening:        nonNil(raw.Evening),
		TransportNotes: raw.TransportNotes,
		CostEstimate:   NormalizeCost(raw.CostEstimate),
		Picks:          FilterPicks(raw.Picks, candidates),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
