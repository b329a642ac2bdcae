package coverage

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"vsc-rating/core/vehicle"
	"vsc-rating/internal/errors"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const schemaBaseURL = "https://vsc-rating.local/schemas/"

type schemas struct {
	selection *jsonschema.Schema
	vehicle   *jsonschema.Schema
}

var loadSchemas = sync.OnceValues(func() (*schemas, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020

	compile := func(name string) (*jsonschema.Schema, error) {
		data, err := schemaFS.ReadFile("schemas/" + name)
		if err != nil {
			return nil, err
		}
		url := schemaBaseURL + name
		if err := c.AddResource(url, bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("schema %s load failed: %w", name, err)
		}
		return c.Compile(url)
	}

	sel, err := compile("selection.schema.json")
	if err != nil {
		return nil, err
	}
	veh, err := compile("vehicle.schema.json")
	if err != nil {
		return nil, err
	}
	return &schemas{selection: sel, vehicle: veh}, nil
})

// selectionAliases maps folded field spellings to canonical selection keys.
// This is the only alias table; spellings not listed here are rejected.
var selectionAliases = map[string]string{
	"termmonths":        "term_months",
	"term":              "term_months",
	"termlength":        "term_months",
	"months":            "term_months",
	"distance":          "distance",
	"coveragedistance":  "distance",
	"coveragemiles":     "distance",
	"miles":             "distance",
	"mileagelimit":      "distance",
	"classoverride":     "class_override",
	"vehicleclass":      "class_override",
	"commercial":        "commercial",
	"commercialuse":     "commercial",
	"liftkit":           "lift_kit",
	"lifted":            "lift_kit",
	"ecopackage":        "eco_package",
	"eco":               "eco_package",
	"technologypackage": "technology_package",
	"techpackage":       "technology_package",
	"technology":        "technology_package",
	"oilchange":         "oil_change",
	"oilchanges":        "oil_change",
	"oilchangetier":     "oil_change",
	"oilchangebundle":   "oil_change",
}

var vehicleAliases = map[string]string{
	"vin":             "vin",
	"make":            "make",
	"vehiclemake":     "make",
	"manufacturer":    "make",
	"model":           "model",
	"vehiclemodel":    "model",
	"modelyear":       "model_year",
	"year":            "model_year",
	"vehicleyear":     "model_year",
	"mileage":         "mileage",
	"odometer":        "mileage",
	"odometerreading": "mileage",
	"currentmileage":  "mileage",
	"drivetrain":      "drivetrain",
	"drivetype":       "drivetrain",
	"drive":           "drivetrain",
	"fueltype":        "fuel_type",
	"fuel":            "fuel_type",
	"engine":          "engine",
	"enginetype":      "engine",
}

var keyFolder = strings.NewReplacer("_", "", "-", "", " ", "")

func foldKey(k string) string {
	return keyFolder.Replace(strings.ToLower(strings.TrimSpace(k)))
}

// canonicalKeys renames raw keys through an alias table. Two spellings of
// the same field are rejected rather than silently merged.
func canonicalKeys(kind string, raw map[string]any, aliases map[string]string) (map[string]any, error) {
	out := make(map[string]any, len(raw))
	source := make(map[string]string, len(raw))
	for k, v := range raw {
		canonical, ok := aliases[foldKey(k)]
		if !ok {
			return nil, errors.Inputf("unknown %s field %q", kind, k).WithContext("field", k)
		}
		if prev, dup := source[canonical]; dup {
			return nil, errors.Inputf("%s field %q given twice (%q and %q)", kind, canonical, prev, k)
		}
		source[canonical] = k
		out[canonical] = v
	}
	return out, nil
}

// NormalizeSelection turns a loosely keyed coverage selection into the
// canonical Selection in one step: alias resolution, value coercion,
// schema validation, decode.
func NormalizeSelection(raw map[string]any) (Selection, error) {
	fields, err := canonicalKeys("coverage", raw, selectionAliases)
	if err != nil {
		return Selection{}, err
	}

	for key, v := range fields {
		var coerced any
		switch key {
		case "term_months":
			coerced, err = intFrom(key, v, "months")
		case "distance":
			var d Distance
			d, err = DistanceFrom(v)
			coerced = d.String()
		case "class_override":
			coerced, err = classFrom(v)
		case "oil_change":
			var tier OilChangeTier
			tier, err = OilChangeTierFrom(v)
			coerced = int(tier)
		default:
			coerced, err = boolFrom(key, v)
		}
		if err != nil {
			return Selection{}, err
		}
		if coerced == nil {
			delete(fields, key)
			continue
		}
		fields[key] = coerced
	}

	var sel Selection
	if err := validateAndDecode("coverage", fields, func(s *schemas) *jsonschema.Schema { return s.selection }, &sel); err != nil {
		return Selection{}, err
	}
	return sel, sel.Validate()
}

// NormalizeVehicle is NormalizeSelection for the vehicle descriptor.
func NormalizeVehicle(raw map[string]any) (vehicle.Descriptor, error) {
	fields, err := canonicalKeys("vehicle", raw, vehicleAliases)
	if err != nil {
		return vehicle.Descriptor{}, err
	}

	for key, v := range fields {
		var coerced any
		switch key {
		case "mileage":
			coerced, err = intFrom(key, v, "miles")
		case "model_year":
			coerced, err = stringFrom(key, v)
		default:
			coerced, err = stringFrom(key, v)
			if s, ok := coerced.(string); ok {
				coerced = strings.Join(strings.Fields(s), " ")
			}
		}
		if err != nil {
			return vehicle.Descriptor{}, err
		}
		fields[key] = coerced
	}

	var d vehicle.Descriptor
	if err := validateAndDecode("vehicle", fields, func(s *schemas) *jsonschema.Schema { return s.vehicle }, &d); err != nil {
		return vehicle.Descriptor{}, err
	}
	return d, d.Validate()
}

func validateAndDecode(kind string, fields map[string]any, pick func(*schemas) *jsonschema.Schema, out any) error {
	s, err := loadSchemas()
	if err != nil {
		return errors.Internal("request schemas failed to compile", err)
	}

	data, err := json.Marshal(fields)
	if err != nil {
		return errors.Wrap(errors.TypeInput, kind+" request is not serializable", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return errors.Wrap(errors.TypeInput, kind+" request is not valid JSON", err)
	}
	if err := pick(s).Validate(doc); err != nil {
		return errors.Wrap(errors.TypeInput, kind+" request failed schema validation", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrap(errors.TypeInput, kind+" request could not be decoded", err)
	}
	return nil
}

// intFrom accepts integers, whole floats and strings such as "36",
// "45,000" or "36 months".
func intFrom(field string, v any, unit string) (int, error) {
	switch t := v.(type) {
	case int:
		return t, nil
	case int64:
		return int(t), nil
	case float64:
		if t != math.Trunc(t) {
			return 0, errors.Inputf("%s must be a whole number, got %v", field, t)
		}
		return int(t), nil
	case json.Number:
		return intFrom(field, t.String(), unit)
	case string:
		s := strings.TrimSpace(strings.TrimSuffix(strings.ToLower(strings.TrimSpace(t)), unit))
		s = separatorStripper.Replace(s)
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, errors.Inputf("%s must be a number, got %q", field, t)
		}
		return n, nil
	default:
		return 0, errors.Inputf("%s has unsupported type %T", field, v)
	}
}

func stringFrom(field string, v any) (string, error) {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t), nil
	case int:
		return strconv.Itoa(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case json.Number:
		return t.String(), nil
	case nil:
		return "", nil
	default:
		return "", errors.Inputf("%s has unsupported type %T", field, v)
	}
}

func boolFrom(field string, v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case bool:
		return t, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "", "false", "no", "n", "0":
			return false, nil
		case "true", "yes", "y", "1":
			return true, nil
		}
		return nil, errors.Inputf("%s must be a boolean, got %q", field, t)
	default:
		return nil, errors.Inputf("%s must be a boolean, got %T", field, v)
	}
}

func classFrom(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(t) == "" {
			return nil, nil
		}
		c, ok := vehicle.ParseClass(t)
		if !ok {
			return nil, errors.Inputf("class override must be A, B or C, got %q", t)
		}
		return string(c), nil
	default:
		return nil, errors.Inputf("class override has unsupported type %T", v)
	}
}
