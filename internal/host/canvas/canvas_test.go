// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 processing.py Authors

package canvas

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/Stefterv/processing.py/internal/host"
)

func TestCanvasShapes(t *testing.T) {
	tests := []struct {
		name   string
		width  int
		height int
		draw   func(c *Canvas)
		want   []string
	}{
		{
			name:  "rect with stroke and fill",
			width: 6, height: 5,
			draw: func(c *Canvas) { c.Rect(0, 0, 5, 4) },
			want: []string{"#####.", "#+++#.", "#+++#.", "#####.", "......"},
		},
		{
			name:  "rect without stroke",
			width: 4, height: 3,
			draw: func(c *Canvas) {
				c.NoStroke()
				c.Rect(1, 1, 2, 1)
			},
			want: []string{"....", ".++.", "...."},
		},
		{
			name:  "centered rect",
			width: 5, height: 5,
			draw: func(c *Canvas) {
				_ = c.RectMode(host.AlignCenter)
				c.NoFill()
				c.Rect(2, 2, 3, 3)
			},
			want: []string{".....", ".###.", ".#.#.", ".###.", "....."},
		},
		{
			name:  "diagonal line",
			width: 4, height: 4,
			draw: func(c *Canvas) { c.Line(0, 0, 3, 3) },
			want: []string{"#...", ".#..", "..#.", "...#"},
		},
		{
			name:  "text",
			width: 4, height: 1,
			draw: func(c *Canvas) { c.Text("hi", 1, 0) },
			want: []string{".hi."},
		},
		{
			name:  "translate with push and pop",
			width: 4, height: 3,
			draw: func(c *Canvas) {
				c.PushMatrix()
				c.Translate(2, 1)
				c.Point(0, 0)
				if err := c.PopMatrix(); err != nil {
					t.Fatal(err)
				}
				c.Point(0, 0)
			},
			want: []string{"#...", "..#.", "...."},
		},
		{
			name:  "shapes clipped at the edge",
			width: 3, height: 2,
			draw: func(c *Canvas) {
				c.Point(-1, 0)
				c.Line(1, 1, 10, 1)
			},
			want: []string{"...", ".##"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.width, tt.height)
			tt.draw(c)
			want := strings.Join(tt.want, "\n") + "\n"
			if got := c.Plain(); got != want {
				t.Errorf("Plain() =\n%s\nwant\n%s", got, want)
			}
		})
	}
}

func TestCanvasEllipse(t *testing.T) {
	c := New(5, 5)
	c.NoStroke()
	c.Ellipse(2, 2, 4, 4)
	rows := strings.Split(c.Plain(), "\n")
	if rows[2][2] != '+' {
		t.Errorf("center not filled:\n%s", c.Plain())
	}
	if rows[0][0] != '.' || rows[4][4] != '.' {
		t.Errorf("corners filled:\n%s", c.Plain())
	}
}

func TestCanvasPopMatrixUnderflow(t *testing.T) {
	c := New(2, 2)
	if err := c.PopMatrix(); !errors.Is(err, ErrMatrixStack) {
		t.Errorf("PopMatrix() error = %v, want ErrMatrixStack", err)
	}
}

func TestCanvasPrintMatrix(t *testing.T) {
	c := New(2, 2)
	var buf bytes.Buffer
	prev := c.SetDiagnosticOutput(&buf)
	if prev == nil {
		t.Error("SetDiagnosticOutput() returned no previous writer")
	}
	c.Translate(3, 4)
	c.PrintMatrix()
	want := "  1.0000   0.0000   3.0000\n  0.0000   1.0000   4.0000\n\n"
	if buf.String() != want {
		t.Errorf("PrintMatrix() wrote %q, want %q", buf.String(), want)
	}
}

func TestCanvasResizeClamps(t *testing.T) {
	c := New(0, MaxSize+10)
	w, h := c.Size()
	if w != 1 || h != MaxSize {
		t.Errorf("Size() = %d, %d, want 1, %d", w, h, MaxSize)
	}
}

func TestCanvasRender(t *testing.T) {
	c := New(3, 2)
	c.Text("ok", 0, 0)
	out := c.Render()
	if !strings.Contains(out, "ok") {
		t.Errorf("Render() = %q, want it to contain the text", out)
	}
	if lines := strings.Split(out, "\n"); len(lines) != 2 {
		t.Errorf("Render() has %d lines, want 2", len(lines))
	}
}

func TestBuiltins(t *testing.T) {
	c := New(10, 10)
	var resized [2]int
	var fps float64
	b := Builtins(c, Hooks{
		Resized:   func(w, h int) { resized = [2]int{w, h} },
		FrameRate: func(f float64) { fps = f },
	})

	call := func(name string, args ...any) (any, error) {
		t.Helper()
		fn, ok := b[name]
		if !ok {
			t.Fatalf("builtin %s missing", name)
		}
		return fn(args)
	}

	if _, err := call("size", int64(4), int64(3)); err != nil {
		t.Fatalf("size() error = %v", err)
	}
	if resized != [2]int{4, 3} {
		t.Errorf("Resized hook got %v, want [4 3]", resized)
	}
	if _, err := call("frameRate", 12.5); err != nil || fps != 12.5 {
		t.Errorf("frameRate() error = %v, fps = %v", err, fps)
	}
	if _, err := call("frameRate", int64(0)); err == nil {
		t.Error("frameRate(0) succeeded")
	}
	if _, err := call("fill", "#FF0000"); err != nil {
		t.Errorf("fill() error = %v", err)
	}
	if _, err := call("fill", "red"); err == nil {
		t.Error("fill('red') succeeded")
	}
	if _, err := call("rect", int64(1)); err == nil {
		t.Error("rect() with one argument succeeded")
	}
	if _, err := call("text", "x", int64(0), int64(0)); err != nil {
		t.Errorf("text() error = %v", err)
	}
	if _, err := call("popMatrix"); !errors.Is(err, ErrMatrixStack) {
		t.Errorf("popMatrix() error = %v, want ErrMatrixStack", err)
	}
	got, err := call("color", int64(255), int64(0), int64(0))
	if err != nil || got != int64(0xFFFF0000) {
		t.Errorf("color() = %#v, %v, want 0xFFFF0000", got, err)
	}
}
