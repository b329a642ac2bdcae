package coverage

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"vsc-rating/internal/errors"
)

// UnlimitedKey is the rate-card key of unlimited coverage distance.
const UnlimitedKey = "unlimited"

// Distance is a normalized coverage-distance key: a positive mile count or
// unlimited. The zero value is "no distance" and never valid for rating.
type Distance struct {
	miles     int
	unlimited bool
}

// Unlimited is the unlimited coverage distance.
var Unlimited = Distance{unlimited: true}

// MilesDistance returns a finite distance of n miles.
func MilesDistance(n int) Distance {
	return Distance{miles: n}
}

var unlimitedSpellings = map[string]bool{
	"unlimited":       true,
	"unl":             true,
	"unlimited miles": true,
	"unlimited mi":    true,
}

var separatorStripper = strings.NewReplacer(",", "", "_", "", " ", "")

// ParseDistance normalizes a raw distance key. Thousands separators
// (",", "_", spaces) are stripped, casing is ignored and a trailing
// "miles"/"mi" unit is accepted: "100,000", "100000" and "100_000 miles"
// are the same key.
func ParseDistance(s string) (Distance, error) {
	key := strings.Join(strings.Fields(strings.ToLower(s)), " ")
	if unlimitedSpellings[key] {
		return Unlimited, nil
	}
	key = strings.TrimSuffix(key, "miles")
	key = strings.TrimSuffix(key, "mi")
	key = separatorStripper.Replace(key)
	if key == "" {
		return Distance{}, errors.Input("coverage distance is required")
	}
	n, err := strconv.Atoi(key)
	if err != nil {
		return Distance{}, errors.Inputf("unrecognized coverage distance %q", s)
	}
	if n <= 0 {
		return Distance{}, errors.Inputf("coverage distance must be positive, got %q", s)
	}
	return MilesDistance(n), nil
}

// DistanceFrom normalizes a loosely typed distance value as it arrives from
// decoded JSON or YAML.
func DistanceFrom(v any) (Distance, error) {
	switch t := v.(type) {
	case nil:
		return Distance{}, errors.Input("coverage distance is required")
	case Distance:
		return t, nil
	case string:
		return ParseDistance(t)
	case int:
		return ParseDistance(strconv.Itoa(t))
	case int64:
		return ParseDistance(strconv.FormatInt(t, 10))
	case float64:
		if t != math.Trunc(t) {
			return Distance{}, errors.Inputf("coverage distance must be a whole number of miles, got %v", t)
		}
		return ParseDistance(strconv.FormatInt(int64(t), 10))
	case json.Number:
		return ParseDistance(t.String())
	default:
		return Distance{}, errors.Inputf("unsupported coverage distance type %T", v)
	}
}

// Miles returns the mile count, or 0 for unlimited.
func (d Distance) Miles() int {
	return d.miles
}

// IsUnlimited reports whether the distance is unlimited.
func (d Distance) IsUnlimited() bool {
	return d.unlimited
}

// IsZero reports whether no distance was given.
func (d Distance) IsZero() bool {
	return !d.unlimited && d.miles == 0
}

// Less orders finite distances ascending with unlimited last.
func (d Distance) Less(o Distance) bool {
	if d.unlimited || o.unlimited {
		return !d.unlimited && o.unlimited
	}
	return d.miles < o.miles
}

// String returns the normalized key.
func (d Distance) String() string {
	switch {
	case d.unlimited:
		return UnlimitedKey
	case d.miles == 0:
		return ""
	default:
		return strconv.Itoa(d.miles)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (d Distance) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Distance) UnmarshalText(text []byte) error {
	parsed, err := ParseDistance(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// UnmarshalJSON accepts both numbers and strings.
func (d *Distance) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("coverage distance: %w", err)
	}
	parsed, err := DistanceFrom(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
