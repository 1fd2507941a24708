// Package args converts raw command arguments into named, typed values.
package args

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"command-plugins/internal/command"
)

// Converter turns one raw argument into a value. ok is false when the
// argument was not supplied at all.
type Converter func(raw string, ok bool) (any, error)

// Field binds a value key to its converter. Text arguments are matched to
// fields by position, slash options by key.
type Field struct {
	Key     string
	Convert Converter
}

// ConversionError reports the first argument that failed to convert.
type ConversionError struct {
	Key   string
	Index int
	Given string
	Err   error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("argument %d (%s) %q: %v", e.Index, e.Key, e.Given, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// Convert runs fields over raw in order. On failure it returns the values
// converted so far together with a *ConversionError.
func Convert(raw []string, fields []Field) (command.Values, error) {
	return convert(fields, func(i int, _ string) (string, bool) {
		if i < len(raw) {
			return raw[i], true
		}
		return "", false
	})
}

func convert(fields []Field, lookup func(i int, key string) (string, bool)) (command.Values, error) {
	values := make(command.Values, len(fields))
	for i, f := range fields {
		given, ok := lookup(i, f.Key)
		v, err := f.Convert(given, ok)
		if err != nil {
			return values, &ConversionError{Key: f.Key, Index: i, Given: given, Err: err}
		}
		values[f.Key] = v
	}
	return values, nil
}

// String passes the argument through. A missing argument becomes "".
func String(raw string, _ bool) (any, error) {
	return raw, nil
}

// Number parses a float.
func Number(raw string, ok bool) (any, error) {
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("value is not a number")
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return nil, fmt.Errorf("value is not a number")
	}
	return f, nil
}

// Integer parses a base-10 integer.
func Integer(raw string, ok bool) (any, error) {
	if !ok {
		return nil, fmt.Errorf("value is not an integer")
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("value is not an integer")
	}
	return n, nil
}

// Boolean accepts "true" and "1" as true; anything else, including a missing
// argument, is false.
func Boolean(raw string, _ bool) (any, error) {
	return raw == "true" || raw == "1", nil
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Date parses RFC 3339 timestamps and plain calendar dates (UTC).
func Date(raw string, ok bool) (any, error) {
	if ok {
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, strings.TrimSpace(raw)); err == nil {
				return t, nil
			}
		}
	}
	return nil, fmt.Errorf("value is not a date")
}

// Required rejects missing arguments before calling next.
func Required(next Converter) Converter {
	return func(raw string, ok bool) (any, error) {
		if !ok {
			return nil, fmt.Errorf("value is required")
		}
		return next(raw, ok)
	}
}

// Choices accepts only the listed strings.
func Choices(choices ...string) Converter {
	choices = slices.Clone(choices)
	return func(raw string, ok bool) (any, error) {
		if !ok || !slices.Contains(choices, raw) {
			return nil, fmt.Errorf("value is not in choices")
		}
		return raw, nil
	}
}

// Limit accepts a required number within [lo, hi].
func Limit(lo, hi float64) Converter {
	return Required(func(raw string, ok bool) (any, error) {
		v, err := Number(raw, ok)
		if err != nil {
			return nil, err
		}
		f := v.(float64)
		if f < lo {
			return nil, fmt.Errorf("value must be higher than %v", lo)
		}
		if f > hi {
			return nil, fmt.Errorf("value must be lower than %v", hi)
		}
		return f, nil
	})
}

// Optional yields def for a missing argument and calls next otherwise.
func Optional(next Converter, def any) Converter {
	return func(raw string, ok bool) (any, error) {
		if !ok {
			return def, nil
		}
		return next(raw, ok)
	}
}
