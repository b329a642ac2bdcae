package coverage

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"vsc-rating/internal/errors"
)

// OilChangeTier is the number of prepaid oil change visits bundled into the
// contract. Tiers are mutually exclusive.
type OilChangeTier int

const (
	OilChangeNone OilChangeTier = 0
	OilChange6    OilChangeTier = 6
	OilChange8    OilChangeTier = 8
	OilChange10   OilChangeTier = 10
)

// OilChangeTiers returns the bundle tiers that can be purchased.
func OilChangeTiers() []OilChangeTier {
	return []OilChangeTier{OilChange6, OilChange8, OilChange10}
}

// Valid reports whether the tier is none or a known bundle.
func (t OilChangeTier) Valid() bool {
	switch t {
	case OilChangeNone, OilChange6, OilChange8, OilChange10:
		return true
	}
	return false
}

// Key returns the schedule key of the tier ("6", "8", "10").
func (t OilChangeTier) Key() string {
	return strconv.Itoa(int(t))
}

// String returns a display label.
func (t OilChangeTier) String() string {
	if t == OilChangeNone {
		return "none"
	}
	return t.Key() + " visits"
}

// OilChangeTierFrom normalizes a loosely typed tier: 8, "8", "8 visits",
// "none", "" and false all parse. Unknown tiers are malformed input.
func OilChangeTierFrom(v any) (OilChangeTier, error) {
	var n int
	switch t := v.(type) {
	case nil:
		return OilChangeNone, nil
	case OilChangeTier:
		n = int(t)
	case bool:
		if t {
			return OilChangeNone, errors.Input("oil change bundle needs a tier (6, 8 or 10)")
		}
		return OilChangeNone, nil
	case int:
		n = t
	case int64:
		n = int(t)
	case float64:
		if t != math.Trunc(t) {
			return OilChangeNone, errors.Inputf("unknown oil change tier %v", t)
		}
		n = int(t)
	case json.Number:
		return OilChangeTierFrom(t.String())
	case string:
		s := strings.ToLower(strings.TrimSpace(t))
		s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSuffix(s, "visits"), "x"))
		if s == "" || s == "none" || s == "0" {
			return OilChangeNone, nil
		}
		parsed, err := strconv.Atoi(s)
		if err != nil {
			return OilChangeNone, errors.Inputf("unknown oil change tier %q", t)
		}
		n = parsed
	default:
		return OilChangeNone, errors.Inputf("unsupported oil change tier type %T", v)
	}

	tier := OilChangeTier(n)
	if !tier.Valid() {
		return OilChangeNone, errors.Inputf("unknown oil change tier %d", n)
	}
	return tier, nil
}
