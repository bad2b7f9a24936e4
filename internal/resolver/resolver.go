// Package resolver orders tables into creation waves by foreign-key dependency.
package resolver

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tordrt/migrationgen/internal/schema"
)

// MaxIterations bounds the frontier extraction loop.
const MaxIterations = 10000

const (
	circularTitle   = "Circular reference detected!"
	circularMessage = "Unfortunately, circular references are not supported. Find and remove the circular reference(s) and try again."
)

// CircularReferenceError is returned when the foreign keys of the input
// tables form a cycle. Title and Message are meant to be shown to the user.
type CircularReferenceError struct {
	Title   string
	Message string
	// Tables lists the tables that could not be placed in a wave.
	Tables []string
}

func (e *CircularReferenceError) Error() string {
	return fmt.Sprintf("%s %s (tables: %s)", e.Title, e.Message, strings.Join(e.Tables, ", "))
}

// Resolve partitions tables into waves. Every table in wave i only depends on
// tables from waves 0..i-1. Tables inside a wave are sorted by name.
func Resolve(tables []schema.Table) ([][]string, error) {
	deps := dependencies(tables)

	var waves [][]string
	for i := 0; len(deps) > 0; i++ {
		if i >= MaxIterations {
			return nil, circular(deps)
		}

		frontier := make(map[string]bool)
		for name, on := range deps {
			if len(on) == 0 {
				frontier[name] = true
			}
			for dep := range on {
				if _, ok := deps[dep]; !ok {
					frontier[dep] = true
				}
			}
		}
		// Nothing left can be extracted, further iterations would not change the map.
		if len(frontier) == 0 {
			return nil, circular(deps)
		}

		wave := make([]string, 0, len(frontier))
		for name := range frontier {
			wave = append(wave, name)
		}
		sort.Strings(wave)
		waves = append(waves, wave)

		for name, on := range deps {
			if frontier[name] {
				delete(deps, name)
				continue
			}
			for dep := range on {
				if frontier[dep] {
					delete(on, dep)
				}
			}
		}
	}

	return waves, nil
}

// Order flattens waves into a single creation order.
func Order(waves [][]string) []string {
	var out []string
	for _, wave := range waves {
		out = append(out, wave...)
	}
	return out
}

// dependencies builds table -> referenced tables. Unnamed keys, self references
// and references to tables outside the input are ignored.
func dependencies(tables []schema.Table) map[string]map[string]struct{} {
	known := make(map[string]bool, len(tables))
	for _, t := range tables {
		known[t.Name] = true
	}

	deps := make(map[string]map[string]struct{}, len(tables))
	for _, t := range tables {
		on := make(map[string]struct{})
		for _, fk := range t.ForeignKeys {
			if fk.Name == "" || fk.ReferencedTable == "" || fk.ReferencedColumn == "" {
				continue
			}
			if fk.ReferencedTable == t.Name || !known[fk.ReferencedTable] {
				continue
			}
			on[fk.ReferencedTable] = struct{}{}
		}
		deps[t.Name] = on
	}
	return deps
}

func circular(deps map[string]map[string]struct{}) error {
	remaining := make([]string, 0, len(deps))
	for name := range deps {
		remaining = append(remaining, name)
	}
	sort.Strings(remaining)
	return &CircularReferenceError{
		Title:   circularTitle,
		Message: circularMessage,
		Tables:  remaining,
	}
}
