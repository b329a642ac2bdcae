package vehicle

import (
	"strings"

	"golang.org/x/text/cases"
)

// excludedMakes are categorically ineligible: supercars plus discontinued
// or high-loss brands. No override exists for these.
var excludedMakes = []string{
	"Ferrari", "Lamborghini", "McLaren", "Bugatti", "Pagani", "Koenigsegg",
	"Rolls-Royce", "Bentley", "Aston Martin", "Lotus", "Maserati",
	"Saab", "Hummer", "Pontiac", "Saturn", "Mercury", "Oldsmobile", "Plymouth",
	"Suzuki", "Daewoo", "Isuzu", "Fisker", "Smart",
}

// ineligibleModels are high-performance trims within otherwise eligible makes.
var ineligibleModels = map[string][]string{
	"Ford":          {"GT", "Shelby GT350", "Shelby GT500", "Mustang Shelby"},
	"Chevrolet":     {"Corvette Z06", "Corvette ZR1", "Camaro ZL1"},
	"Dodge":         {"Viper", "Challenger SRT Demon", "Challenger SRT Hellcat", "Charger SRT Hellcat"},
	"Jeep":          {"Grand Cherokee Trackhawk"},
	"Ram":           {"1500 TRX"},
	"Nissan":        {"GT-R"},
	"Porsche":       {"911 GT2", "911 GT3", "918", "Carrera GT"},
	"BMW":           {"M8"},
	"Mercedes-Benz": {"AMG GT", "SLS"},
	"Audi":          {"R8"},
	"Lexus":         {"LFA"},
	"Acura":         {"NSX"},
}

// classAMakes are economy / mass-market makes. Exceptions promote
// specific models out of class A.
var classAMakes = map[string]map[string]Class{
	"Toyota":     {"Land Cruiser": ClassC, "Sequoia": ClassB, "Supra": ClassB, "Tundra": ClassB},
	"Honda":      {"Ridgeline": ClassB},
	"Hyundai":    {"Genesis": ClassB},
	"Kia":        {"Stinger": ClassB, "K900": ClassC},
	"Mazda":      {},
	"Nissan":     {"Armada": ClassB, "Titan": ClassB, "370Z": ClassB},
	"Subaru":     {"WRX STI": ClassB},
	"Mitsubishi": {},
}

// classCMakes are luxury / performance makes. Exceptions demote
// entry-level models to class B.
var classCMakes = map[string]map[string]Class{
	"BMW":           {"3 Series": ClassB, "X1": ClassB},
	"Mercedes-Benz": {"CLA": ClassB, "GLA": ClassB},
	"Audi":          {"A3": ClassB, "Q3": ClassB},
	"Lexus":         {"ES": ClassB, "UX": ClassB},
	"Infiniti":      {"QX50": ClassB},
	"Acura":         {"ILX": ClassB, "Integra": ClassB},
	"Cadillac":      {},
	"Lincoln":       {},
	"Land Rover":    {},
	"Jaguar":        {},
	"Porsche":       {},
	"Volvo":         {},
	"Genesis":       {},
	"Tesla":         {},
	"Alfa Romeo":    {},
}

// classBMakes is the mainstream fallback table.
var classBMakes = []string{
	"Ford", "Chevrolet", "GMC", "Dodge", "Ram", "Jeep", "Chrysler", "Buick",
	"Volkswagen", "Mini", "Fiat",
}

var makeAliases = map[string]string{
	"Chevy":       "Chevrolet",
	"VW":          "Volkswagen",
	"Mercedes":    "Mercedes-Benz",
	"Benz":        "Mercedes-Benz",
	"Range Rover": "Land Rover",
}

// classifier holds the tables above with every key normalized once.
type classifier struct {
	excluded   map[string]bool
	ineligible map[string][]string
	classA     map[string]map[string]Class
	classC     map[string]map[string]Class
	classB     map[string]bool
	aliases    map[string]string
}

var defaultClassifier = newClassifier()

func newClassifier() *classifier {
	c := &classifier{
		excluded:   make(map[string]bool),
		ineligible: make(map[string][]string),
		classA:     normalizeMakeTable(classAMakes),
		classC:     normalizeMakeTable(classCMakes),
		classB:     make(map[string]bool),
		aliases:    make(map[string]string),
	}
	for _, m := range excludedMakes {
		c.excluded[normalize(m)] = true
	}
	for m, models := range ineligibleModels {
		for _, model := range models {
			c.ineligible[normalize(m)] = append(c.ineligible[normalize(m)], normalize(model))
		}
	}
	for _, m := range classBMakes {
		c.classB[normalize(m)] = true
	}
	for alias, canonical := range makeAliases {
		c.aliases[normalize(alias)] = normalize(canonical)
	}
	return c
}

func normalizeMakeTable(in map[string]map[string]Class) map[string]map[string]Class {
	out := make(map[string]map[string]Class, len(in))
	for m, exceptions := range in {
		ex := make(map[string]Class, len(exceptions))
		for model, class := range exceptions {
			ex[normalize(model)] = class
		}
		out[normalize(m)] = ex
	}
	return out
}

// Classify maps a make and optional model to a rating class.
//
// Evaluation order:
//  1. categorical make exclusions -> INELIGIBLE
//  2. high-performance model overrides -> INELIGIBLE
//  3. class A and class C make tables, with model exceptions
//  4. class B make table
//  5. anything else -> INELIGIBLE
func Classify(make, model string) Class {
	return defaultClassifier.classify(make, model)
}

// IsExcludedMake reports whether a make is categorically excluded.
func IsExcludedMake(make string) bool {
	return defaultClassifier.excluded[defaultClassifier.canonicalMake(make)]
}

func (c *classifier) canonicalMake(make string) string {
	mk := normalize(make)
	if canonical, ok := c.aliases[mk]; ok {
		return canonical
	}
	return mk
}

func (c *classifier) classify(make, model string) Class {
	mk := c.canonicalMake(make)
	if mk == "" || c.excluded[mk] {
		return ClassIneligible
	}

	md := normalize(model)
	for _, trim := range c.ineligible[mk] {
		if modelMatches(md, trim) {
			return ClassIneligible
		}
	}

	if exceptions, ok := c.classA[mk]; ok {
		return withException(md, exceptions, ClassA)
	}
	if exceptions, ok := c.classC[mk]; ok {
		return withException(md, exceptions, ClassC)
	}
	if c.classB[mk] {
		return ClassB
	}
	return ClassIneligible
}

func withException(model string, exceptions map[string]Class, base Class) Class {
	if model == "" {
		return base
	}
	// Longest rule wins so "wrx sti" beats a hypothetical "wrx".
	best, bestLen := base, 0
	for rule, class := range exceptions {
		if modelMatches(model, rule) && len(rule) > bestLen {
			best, bestLen = class, len(rule)
		}
	}
	return best
}

// modelMatches reports whether model is rule or starts with rule as a
// whole word sequence: "corvette z06 3lz" matches "corvette z06".
func modelMatches(model, rule string) bool {
	if model == "" || rule == "" {
		return false
	}
	return model == rule || strings.HasPrefix(model, rule+" ")
}

// normalize folds case, treats '-' and '_' as spaces and collapses whitespace.
func normalize(s string) string {
	s = cases.Fold().String(s)
	s = strings.NewReplacer("-", " ", "_", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
