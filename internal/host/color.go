// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 processing.py Authors

package host

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is a packed 0xAARRGGBB value.
type Color uint32

// Common colors.
const (
	Black Color = 0xFF000000
	White Color = 0xFFFFFFFF
)

// RGBA packs channel values, clamping each to 0..255.
func RGBA(r, g, b, a float64) Color {
	return Color(clampByte(a)<<24 | clampByte(r)<<16 | clampByte(g)<<8 | clampByte(b))
}

// Gray returns an opaque grey level.
func Gray(level float64) Color {
	return RGBA(level, level, level, 255)
}

func (c Color) A() uint8 { return uint8(c >> 24) }
func (c Color) R() uint8 { return uint8(c >> 16) }
func (c Color) G() uint8 { return uint8(c >> 8) }
func (c Color) B() uint8 { return uint8(c) }

// Hex returns the color as "#RRGGBB", dropping alpha.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R(), c.G(), c.B())
}

// ParseColor converts color arguments the way fill(), stroke() and
// background() accept them:
//
//	(gray) (gray, alpha) (r, g, b) (r, g, b, alpha)
//	("#RRGGBB") ("#RRGGBB", alpha) (0xAARRGGBB)
//
// A single integer outside 0..255 is a packed 0xAARRGGBB value.
func ParseColor(args []any) (Color, error) {
	if len(args) == 0 || len(args) > 4 {
		return 0, fmt.Errorf("a color takes 1 to 4 arguments, but I got %d", len(args))
	}

	if s, ok := args[0].(string); ok {
		c, err := parseHex(s)
		if err != nil {
			return 0, err
		}
		switch len(args) {
		case 1:
			return c, nil
		case 2:
			alpha, err := ToFloat(args[1])
			if err != nil {
				return 0, err
			}
			return Color(uint32(c)&0x00FFFFFF | uint32(clampByte(alpha))<<24), nil
		}
		return 0, fmt.Errorf("a color string takes at most an alpha argument")
	}

	if len(args) == 1 {
		if n, ok := args[0].(int64); ok && (n < 0 || n > 255) {
			return Color(uint32(n)), nil
		}
	}

	vals := make([]float64, len(args))
	for i, a := range args {
		v, err := ToFloat(a)
		if err != nil {
			return 0, err
		}
		vals[i] = v
	}
	switch len(vals) {
	case 1:
		return Gray(vals[0]), nil
	case 2:
		return RGBA(vals[0], vals[0], vals[0], vals[1]), nil
	case 3:
		return RGBA(vals[0], vals[1], vals[2], 255), nil
	}
	return RGBA(vals[0], vals[1], vals[2], vals[3]), nil
}

func parseHex(s string) (Color, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 || hex == s {
		return 0, fmt.Errorf("color string %q is not of the form '#RRGGBB'", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("color string %q is not of the form '#RRGGBB'", s)
	}
	return Color(0xFF000000 | uint32(v)), nil
}

func clampByte(v float64) uint32 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint32(v + 0.5)
}
