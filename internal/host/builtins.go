// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 processing.py Authors

package host

import (
	"fmt"
	"math"

	"github.com/Stefterv/processing.py/internal/scripting"
)

// ToFloat converts a script number to float64.
func ToFloat(v any) (float64, error) {
	switch n := v.(type) {
	case int64:
		return float64(n), nil
	case int:
		return float64(n), nil
	case float64:
		return n, nil
	case bool:
		if n {
			return 1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("expected a number, got %T", v)
}

// ToInt converts a script number to int, truncating floats.
func ToInt(v any) (int, error) {
	f, err := ToFloat(v)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

// Floats converts args to float64 after checking that the call passed one
// of the accepted argument counts.
func Floats(name string, args []any, counts ...int) ([]float64, error) {
	if err := CheckArgs(name, args, counts...); err != nil {
		return nil, err
	}
	out := make([]float64, len(args))
	for i, a := range args {
		v, err := ToFloat(a)
		if err != nil {
			return nil, fmt.Errorf("%s(): argument %d: %w", name, i+1, err)
		}
		out[i] = v
	}
	return out, nil
}

// CheckArgs verifies the argument count.
func CheckArgs(name string, args []any, counts ...int) error {
	for _, n := range counts {
		if len(args) == n {
			return nil
		}
	}
	if len(counts) == 1 {
		return fmt.Errorf("%s() takes %d arguments, but I got %d", name, counts[0], len(args))
	}
	return fmt.Errorf("%s() takes %v arguments, but I got %d", name, counts, len(args))
}

// CoreBuiltins are the math helpers every host provides.
func CoreBuiltins() map[string]scripting.Builtin {
	return map[string]scripting.Builtin{
		"map": func(args []any) (any, error) {
			v, err := Floats("map", args, 5)
			if err != nil {
				return nil, err
			}
			return Remap(v[0], v[1], v[2], v[3], v[4]), nil
		},
		"constrain": func(args []any) (any, error) {
			v, err := Floats("constrain", args, 3)
			if err != nil {
				return nil, err
			}
			c := math.Min(math.Max(v[0], v[1]), v[2])
			if allInts(args) {
				return int64(c), nil
			}
			return c, nil
		},
		"lerp": func(args []any) (any, error) {
			v, err := Floats("lerp", args, 3)
			if err != nil {
				return nil, err
			}
			return v[0] + (v[1]-v[0])*v[2], nil
		},
		"dist": func(args []any) (any, error) {
			v, err := Floats("dist", args, 4)
			if err != nil {
				return nil, err
			}
			return math.Hypot(v[2]-v[0], v[3]-v[1]), nil
		},
	}
}

// Remap re-maps v from the range [start1, stop1] to [start2, stop2].
func Remap(v, start1, stop1, start2, stop2 float64) float64 {
	return start2 + (stop2-start2)*((v-start1)/(stop1-start1))
}

func allInts(args []any) bool {
	for _, a := range args {
		if _, ok := a.(int64); !ok {
			return false
		}
	}
	return true
}
