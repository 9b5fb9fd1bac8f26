// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 processing.py Authors

// Package canvas is a character-cell drawing surface. One cell is one unit
// of sketch coordinates.
package canvas

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"sync"

	"github.com/Stefterv/processing.py/internal/host"
)

// MaxSize bounds each canvas dimension.
const MaxSize = 512

// ErrMatrixStack indicates popMatrix without a matching pushMatrix
var ErrMatrixStack = errors.New("too many calls to popMatrix(), and not enough to pushMatrix()")

type kind uint8

const (
	kindBackground kind = iota
	kindFill
	kindStroke
	kindText
)

type cell struct {
	ch   rune
	kind kind
	fg   host.Color
	bg   host.Color
}

// Canvas is safe for concurrent use, although sketches only draw from the
// host loop goroutine.
type Canvas struct {
	mu     sync.Mutex
	width  int
	height int
	cells  []cell

	background host.Color
	fill       host.Color
	stroke     host.Color
	doFill     bool
	doStroke   bool
	rectMode   int

	tx, ty float64
	stack  [][2]float64

	out io.Writer
}

// New returns a canvas cleared to a light grey background.
func New(width, height int) *Canvas {
	c := &Canvas{
		background: host.Gray(204),
		fill:       host.White,
		stroke:     host.Black,
		doFill:     true,
		doStroke:   true,
		rectMode:   host.ModeCorner,
		out:        os.Stdout,
	}
	c.resize(width, height)
	return c
}

// Size returns the canvas dimensions.
func (c *Canvas) Size() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width, c.height
}

// Resize changes the dimensions and clears the canvas.
func (c *Canvas) Resize(width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resize(width, height)
}

func (c *Canvas) resize(width, height int) {
	c.width = clampDim(width)
	c.height = clampDim(height)
	c.cells = make([]cell, c.width*c.height)
	c.clear(c.background)
}

func clampDim(n int) int {
	switch {
	case n < 1:
		return 1
	case n > MaxSize:
		return MaxSize
	}
	return n
}

func (c *Canvas) clear(bg host.Color) {
	c.background = bg
	for i := range c.cells {
		c.cells[i] = cell{ch: ' ', kind: kindBackground, bg: bg}
	}
}

// Background clears every cell to col.
func (c *Canvas) Background(col host.Color) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clear(col)
}

// Fill sets the interior color of shapes and the color of text.
func (c *Canvas) Fill(col host.Color) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fill, c.doFill = col, true
}

// NoFill disables shape interiors.
func (c *Canvas) NoFill() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.doFill = false
}

// Stroke sets the outline color.
func (c *Canvas) Stroke(col host.Color) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stroke, c.doStroke = col, true
}

// NoStroke disables outlines.
func (c *Canvas) NoStroke() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.doStroke = false
}

// RectMode selects how Rect reads its arguments: CORNER, CORNERS or CENTER.
func (c *Canvas) RectMode(mode int) error {
	switch mode {
	case host.ModeCorner, host.ModeCorners, host.AlignCenter:
	default:
		return fmt.Errorf("unsupported rectMode %d", mode)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rectMode = mode
	return nil
}

// Translate moves the origin.
func (c *Canvas) Translate(dx, dy float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tx += dx
	c.ty += dy
}

// PushMatrix saves the current origin.
func (c *Canvas) PushMatrix() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stack = append(c.stack, [2]float64{c.tx, c.ty})
}

// PopMatrix restores the origin saved by the matching PushMatrix.
func (c *Canvas) PopMatrix() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.stack) == 0 {
		return ErrMatrixStack
	}
	top := c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
	c.tx, c.ty = top[0], top[1]
	return nil
}

// ResetMatrix clears the transform, as every new frame does.
func (c *Canvas) ResetMatrix() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tx, c.ty = 0, 0
	c.stack = c.stack[:0]
}

// SetDiagnosticOutput sets where PrintMatrix writes and returns the
// previous writer.
func (c *Canvas) SetDiagnosticOutput(w io.Writer) io.Writer {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev := c.out
	c.out = w
	return prev
}

// PrintMatrix writes the current transform as a 2x3 matrix.
func (c *Canvas) PrintMatrix() {
	c.mu.Lock()
	w, tx, ty := c.out, c.tx, c.ty
	c.mu.Unlock()
	fmt.Fprintf(w, "%8.4f %8.4f %8.4f\n%8.4f %8.4f %8.4f\n\n", 1.0, 0.0, tx, 0.0, 1.0, ty)
}

// Point sets one cell to the stroke color.
func (c *Canvas) Point(x, y float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.doStroke {
		return
	}
	px, py := c.project(x, y)
	c.plotStroke(px, py)
}

// Line draws a stroke between two points.
func (c *Canvas) Line(x1, y1, x2, y2 float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.doStroke {
		return
	}
	ax, ay := c.project(x1, y1)
	bx, by := c.project(x2, y2)
	dx, dy := abs(bx-ax), -abs(by-ay)
	sx, sy := sign(bx-ax), sign(by-ay)
	e := dx + dy
	for {
		c.plotStroke(ax, ay)
		if ax == bx && ay == by {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			ax += sx
		}
		if e2 <= dx {
			e += dx
			ay += sy
		}
	}
}

// Rect draws a rectangle according to the rect mode.
func (c *Canvas) Rect(a, b, cw, ch float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	x, y, w, h := a, b, cw, ch
	switch c.rectMode {
	case host.ModeCorners:
		w, h = cw-a, ch-b
	case host.AlignCenter:
		x, y = a-cw/2, b-ch/2
	}
	if w < 0 {
		x, w = x+w, -w
	}
	if h < 0 {
		y, h = y+h, -h
	}
	x0, y0 := c.project(x, y)
	x1, y1 := c.project(x+w, y+h)
	x1, y1 = max(x1, x0+1), max(y1, y0+1)
	for py := y0; py < y1; py++ {
		for px := x0; px < x1; px++ {
			edge := px == x0 || py == y0 || px == x1-1 || py == y1-1
			c.shade(px, py, edge)
		}
	}
}

// Ellipse draws an ellipse centered on (x, y).
func (c *Canvas) Ellipse(x, y, w, h float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rx, ry := math.Abs(w)/2, math.Abs(h)/2
	if rx == 0 || ry == 0 {
		return
	}
	cx, cy := x+c.tx, y+c.ty
	inside := func(px, py int) bool {
		nx := (float64(px) + 0.5 - cx) / rx
		ny := (float64(py) + 0.5 - cy) / ry
		return nx*nx+ny*ny <= 1
	}
	for py := int(math.Floor(cy - ry)); py <= int(math.Ceil(cy+ry)); py++ {
		for px := int(math.Floor(cx - rx)); px <= int(math.Ceil(cx+rx)); px++ {
			if !inside(px, py) {
				continue
			}
			edge := !inside(px-1, py) || !inside(px+1, py) || !inside(px, py-1) || !inside(px, py+1)
			c.shade(px, py, edge)
		}
	}
}

// Text writes s starting at (x, y) in the fill color.
func (c *Canvas) Text(s string, x, y float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.doFill {
		return
	}
	px, py := c.project(x, y)
	for i, r := range []rune(s) {
		if p, ok := c.index(px+i, py); ok {
			c.cells[p] = cell{ch: r, kind: kindText, fg: c.fill, bg: c.cells[p].bg}
		}
	}
}

func (c *Canvas) project(x, y float64) (int, int) {
	return int(math.Round(x + c.tx)), int(math.Round(y + c.ty))
}

func (c *Canvas) index(x, y int) (int, bool) {
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		return 0, false
	}
	return y*c.width + x, true
}

func (c *Canvas) plotStroke(x, y int) {
	if p, ok := c.index(x, y); ok {
		c.cells[p] = cell{ch: '█', kind: kindStroke, fg: c.stroke, bg: c.cells[p].bg}
	}
}

func (c *Canvas) shade(x, y int, edge bool) {
	switch {
	case edge && c.doStroke:
		c.plotStroke(x, y)
	case c.doFill:
		if p, ok := c.index(x, y); ok {
			c.cells[p] = cell{ch: ' ', kind: kindFill, bg: c.fill}
		}
	}
}

// Plain renders the canvas without color: '.' background, '+' fill,
// '#' stroke, and text as itself.
func (c *Canvas) Plain() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var b strings.Builder
	for y := 0; y < c.height; y++ {
		for x := 0; x < c.width; x++ {
			cl := c.cells[y*c.width+x]
			switch cl.kind {
			case kindBackground:
				b.WriteByte('.')
			case kindFill:
				b.WriteByte('+')
			case kindStroke:
				b.WriteByte('#')
			default:
				b.WriteRune(cl.ch)
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}
