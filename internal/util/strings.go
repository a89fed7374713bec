// Package util holds small generic helpers shared across the engine that
// don't belong to any single domain package.
package util

import (
	"encoding/json"
	"fmt"
)

// Map applies f to every element of s.
func Map[T, U any](f func(T) U, s []T) []U {
	result := make([]U, len(s))
	for i, v := range s {
		result[i] = f(v)
	}
	return result
}

// Filter returns the elements of s for which keep reports true.
func Filter[T any](keep func(T) bool, s []T) []T {
	result := make([]T, 0, len(s))
	for _, v := range s {
		if keep(v) {
			result = append(result, v)
		}
	}
	return result
}

// Stringify renders v as JSON for logging, falling back to a Go-syntax
// representation if v doesn't marshal.
func Stringify(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%#v", v)
	}
	return string(b)
}
