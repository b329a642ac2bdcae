package catalog

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/shopspring/decimal"
)

// Band variables available to `when` predicates.
const (
	VarDriverAge    = "driver_age"
	VarVehicleAge   = "vehicle_age"
	VarRegion       = "region"
	VarTermMonths   = "term_months"
	VarDistance     = "distance"
	VarUnlimited    = "unlimited"
	VarVehicleClass = "vehicle_class"
	VarMileage      = "mileage"
)

var bandEnv = sync.OnceValues(func() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable(VarDriverAge, cel.IntType),
		cel.Variable(VarVehicleAge, cel.IntType),
		cel.Variable(VarRegion, cel.StringType),
		cel.Variable(VarTermMonths, cel.IntType),
		cel.Variable(VarDistance, cel.IntType),
		cel.Variable(VarUnlimited, cel.BoolType),
		cel.Variable(VarVehicleClass, cel.StringType),
		cel.Variable(VarMileage, cel.IntType),
	)
})

// Factor is a named multiplier picked from ordered bands.
type Factor struct {
	Name  string
	Bands []Band
}

// Band is one predicate and the multiplier it selects.
type Band struct {
	When       string
	Label      string
	Multiplier decimal.Decimal

	program cel.Program
}

// NewBand compiles a band predicate. The expression must be boolean.
func NewBand(when, label string, multiplier decimal.Decimal) (Band, error) {
	env, err := bandEnv()
	if err != nil {
		return Band{}, fmt.Errorf("band environment: %w", err)
	}
	ast, issues := env.Compile(when)
	if issues != nil && issues.Err() != nil {
		return Band{}, fmt.Errorf("band %q: %w", when, issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return Band{}, fmt.Errorf("band %q must be a boolean expression, got %s", when, ast.OutputType())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return Band{}, fmt.Errorf("band %q: %w", when, err)
	}
	if label == "" {
		label = when
	}
	return Band{When: when, Label: label, Multiplier: multiplier, program: prg}, nil
}

// Matches evaluates the predicate.
func (b Band) Matches(vars map[string]any) (bool, error) {
	if b.program == nil {
		return false, fmt.Errorf("band %q is not compiled", b.When)
	}
	out, _, err := b.program.Eval(vars)
	if err != nil {
		return false, fmt.Errorf("band %q: %w", b.When, err)
	}
	matched, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("band %q returned %T, want bool", b.When, out.Value())
	}
	return matched, nil
}

// Select returns the first band whose predicate holds.
func (f Factor) Select(vars map[string]any) (Band, bool, error) {
	for _, b := range f.Bands {
		ok, err := b.Matches(vars)
		if err != nil {
			return Band{}, false, fmt.Errorf("factor %s: %w", f.Name, err)
		}
		if ok {
			return b, true, nil
		}
	}
	return Band{}, false, nil
}
