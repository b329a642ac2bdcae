// Package output renders rating results for people and machines.
package output

import (
	"io"
	"sort"
	"strings"
	"sync"

	"vsc-rating/core/diff"
	"vsc-rating/core/rating"
	"vsc-rating/core/ratecard"
	"vsc-rating/internal/errors"
)

// Format represents output format type
type Format string

const (
	// FormatCLI is a human-readable terminal layout
	FormatCLI Format = "cli"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"

	// FormatMarkdown is a markdown report
	FormatMarkdown Format = "markdown"
)

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// Outcome renders a quote or an ineligibility record
	Outcome(w io.Writer, out rating.Outcome) error

	// Options renders the priceable coverage choices for a product
	Options(w io.Writer, product string, opts rating.Options) error

	// RateCards renders rate card metadata
	RateCards(w io.Writer, cards []ratecard.Metadata) error

	// Verification renders rate card integrity results
	Verification(w io.Writer, results []ratecard.VerifyResult) error

	// Diff renders a cell-level comparison of two rate card versions
	Diff(w io.Writer, d *diff.Result) error
}

// Registry manages formatter registration
type Registry struct {
	mu         sync.RWMutex
	formatters map[Format]Formatter
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{formatters: make(map[Format]Formatter)}
}

// DefaultRegistry returns a registry with the built-in formatters.
// noColor disables terminal styling for the cli format.
func DefaultRegistry(noColor bool) *Registry {
	r := NewRegistry()
	_ = r.Register(NewCLIFormatter(noColor))
	_ = r.Register(NewJSONFormatter())
	_ = r.Register(NewMarkdownFormatter())
	return r
}

// Register adds a formatter. A format can only be registered once.
func (r *Registry) Register(f Formatter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.formatters[f.Format()]; exists {
		return errors.Newf(errors.TypeConfig, "formatter %q already registered", f.Format())
	}
	r.formatters[f.Format()] = f
	return nil
}

// Get returns the formatter for a format name, case-insensitively.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.formatters[Format(strings.ToLower(strings.TrimSpace(name)))]
	if !ok {
		return nil, errors.Inputf("unknown output format %q (want one of %s)",
			name, strings.Join(r.names(), ", "))
	}
	return f, nil
}

// Formats returns the registered format names, sorted.
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.names()
}

func (r *Registry) names() []string {
	names := make([]string, 0, len(r.formatters))
	for f := range r.formatters {
		names = append(names, string(f))
	}
	sort.Strings(names)
	return names
}
