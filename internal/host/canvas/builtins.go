// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 processing.py Authors

package canvas

import (
	"fmt"

	"github.com/Stefterv/processing.py/internal/host"
	"github.com/Stefterv/processing.py/internal/scripting"
)

// Hooks connect the drawing builtins to the host that owns the canvas.
type Hooks struct {
	// Resized runs after size() changed the canvas.
	Resized func(width, height int)

	// FrameRate runs when the sketch asks for a target frame rate.
	FrameRate func(fps float64)
}

// Builtins returns the drawing functions scripts call, bound to c.
func Builtins(c *Canvas, hooks Hooks) map[string]scripting.Builtin {
	colorArg := func(name string, apply func(host.Color)) scripting.Builtin {
		return func(args []any) (any, error) {
			col, err := host.ParseColor(args)
			if err != nil {
				return nil, fmt.Errorf("%s(): %w", name, err)
			}
			apply(col)
			return nil, nil
		}
	}
	shape := func(name string, n int, draw func(v []float64)) scripting.Builtin {
		return func(args []any) (any, error) {
			v, err := host.Floats(name, args, n)
			if err != nil {
				return nil, err
			}
			draw(v)
			return nil, nil
		}
	}

	return map[string]scripting.Builtin{
		"size": func(args []any) (any, error) {
			v, err := host.Floats("size", args, 2, 3)
			if err != nil {
				return nil, err
			}
			c.Resize(int(v[0]), int(v[1]))
			if hooks.Resized != nil {
				w, h := c.Size()
				hooks.Resized(w, h)
			}
			return nil, nil
		},
		"frameRate": func(args []any) (any, error) {
			v, err := host.Floats("frameRate", args, 1)
			if err != nil {
				return nil, err
			}
			if v[0] <= 0 {
				return nil, fmt.Errorf("frameRate() must be positive, got %v", v[0])
			}
			if hooks.FrameRate != nil {
				hooks.FrameRate(v[0])
			}
			return nil, nil
		},
		"color": func(args []any) (any, error) {
			col, err := host.ParseColor(args)
			if err != nil {
				return nil, fmt.Errorf("color(): %w", err)
			}
			return int64(col), nil
		},
		"background": colorArg("background", c.Background),
		"fill":       colorArg("fill", c.Fill),
		"stroke":     colorArg("stroke", c.Stroke),
		"noFill": func(args []any) (any, error) {
			c.NoFill()
			return nil, nil
		},
		"noStroke": func(args []any) (any, error) {
			c.NoStroke()
			return nil, nil
		},
		"rectMode": func(args []any) (any, error) {
			if err := host.CheckArgs("rectMode", args, 1); err != nil {
				return nil, err
			}
			mode, err := host.ToInt(args[0])
			if err != nil {
				return nil, err
			}
			return nil, c.RectMode(mode)
		},
		"point":   shape("point", 2, func(v []float64) { c.Point(v[0], v[1]) }),
		"line":    shape("line", 4, func(v []float64) { c.Line(v[0], v[1], v[2], v[3]) }),
		"rect":    shape("rect", 4, func(v []float64) { c.Rect(v[0], v[1], v[2], v[3]) }),
		"ellipse": shape("ellipse", 4, func(v []float64) { c.Ellipse(v[0], v[1], v[2], v[3]) }),
		"circle":  shape("circle", 3, func(v []float64) { c.Ellipse(v[0], v[1], v[2], v[2]) }),
		"text": func(args []any) (any, error) {
			if len(args) < 3 || len(args) > 5 {
				return nil, fmt.Errorf("text() takes 3-5 arguments, but I got %d", len(args))
			}
			pos, err := host.Floats("text", args[1:3], 2)
			if err != nil {
				return nil, err
			}
			c.Text(fmt.Sprint(args[0]), pos[0], pos[1])
			return nil, nil
		},
		"translate": shape("translate", 2, func(v []float64) { c.Translate(v[0], v[1]) }),
		"pushMatrix": func(args []any) (any, error) {
			c.PushMatrix()
			return nil, nil
		},
		"popMatrix": func(args []any) (any, error) {
			return nil, c.PopMatrix()
		},
		"resetMatrix": func(args []any) (any, error) {
			c.ResetMatrix()
			return nil, nil
		},
		"printMatrix": func(args []any) (any, error) {
			c.PrintMatrix()
			return nil, nil
		},
	}
}
