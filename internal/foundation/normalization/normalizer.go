// Package normalization maps loosely written configuration strings onto
// typed enum values.
package normalization

import (
	"fmt"
	"slices"
	"strings"
)

// Normalizer maps case and whitespace insensitive keys to enum values.
type Normalizer[T comparable] struct {
	values map[string]T
	def    T
	keys   []string
}

// NewNormalizer returns a Normalizer over values; unknown input maps to def.
func NewNormalizer[T comparable](values map[string]T, def T) *Normalizer[T] {
	n := &Normalizer[T]{values: make(map[string]T, len(values)), def: def}
	for k, v := range values {
		key := clean(k)
		n.values[key] = v
		n.keys = append(n.keys, key)
	}
	slices.Sort(n.keys)
	return n
}

// Normalize returns the value for raw, or the default.
func (n *Normalizer[T]) Normalize(raw string) T {
	if v, ok := n.values[clean(raw)]; ok {
		return v
	}
	return n.def
}

// Parse returns the value for raw or an error listing the accepted keys.
func (n *Normalizer[T]) Parse(raw string) (T, error) {
	if v, ok := n.values[clean(raw)]; ok {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid value %q, valid options: %s", raw, strings.Join(n.keys, ", "))
}

// Keys returns the accepted keys, sorted.
func (n *Normalizer[T]) Keys() []string { return slices.Clone(n.keys) }

func clean(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
