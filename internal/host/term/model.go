// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 processing.py Authors

package term

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Stefterv/processing.py/internal/host"
)

type (
	startMsg struct{}
	tickMsg  struct{}
)

// model drives the sketch from the bubbletea event loop. Update runs on a
// single goroutine, which makes it the host's loop goroutine.
type model struct {
	h  *Host
	sk host.Sketch

	frame    int
	quitting bool

	// pressed tracks the button held since the last press, for clicks.
	pressed   int
	dragged   bool
	lastError error
}

func newModel(h *Host, sk host.Sketch) model {
	return model{h: h, sk: sk}
}

func (m model) Init() tea.Cmd {
	return func() tea.Msg { return startMsg{} }
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.quitting {
		return m, nil
	}

	switch msg := msg.(type) {
	case startMsg:
		if m.step(m.sk.Settings) || m.step(m.sk.Setup) {
			return m.finish()
		}
		return m, m.tick()

	case tickMsg:
		m.h.RunPending()
		if m.h.ExitRequested() {
			return m.finish()
		}
		if m.h.Paused() {
			return m, m.tick()
		}
		m.frame++
		frame := m.frame
		m.h.Update(func(s *host.State) { s.FrameCount = frame })
		m.h.canvas.ResetMatrix()
		if m.step(m.sk.Draw) {
			return m.finish()
		}
		return m, m.tick()

	case tea.KeyMsg:
		if m.h.prompt != nil {
			closed, cmd := m.h.prompt.update(msg)
			if closed {
				m.h.prompt = nil
			}
			return m, cmd
		}
		if msg.Type == tea.KeyCtrlC {
			return m.closeSurface()
		}
		if m.keys(msg) {
			return m.finish()
		}
		if msg.Type == tea.KeyEsc {
			m.h.Exit()
		}
		return m, nil

	case tea.MouseMsg:
		for _, ev := range m.mouse(msg) {
			if m.deliver(func() error { return m.h.DeliverMouse(ev) }) {
				return m.finish()
			}
		}
		return m, nil

	case tea.FocusMsg:
		if m.deliver(func() error { return m.h.DeliverFocus(true) }) {
			return m.finish()
		}
		return m, nil

	case tea.BlurMsg:
		if m.deliver(func() error { return m.h.DeliverFocus(false) }) {
			return m.finish()
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.h.Update(func(s *host.State) {
			s.DisplayWidth, s.DisplayHeight = msg.Width, msg.Height
		})
		return m, nil
	}
	return m, nil
}

// step runs one sketch call and reports whether the loop must stop.
func (m *model) step(call func() error) bool {
	if err := call(); err != nil {
		m.lastError = err
		m.h.Exit()
	}
	return m.h.ExitRequested()
}

func (m *model) deliver(call func() error) bool { return m.step(call) }

// keys synthesizes pressed, typed and released for one terminal key,
// since terminals report no key-up.
func (m *model) keys(msg tea.KeyMsg) bool {
	key, code, typed, ok := translateKey(msg)
	if !ok {
		return false
	}
	actions := []string{host.KeyPressed}
	if typed {
		actions = append(actions, host.KeyTyped)
	}
	actions = append(actions, host.KeyReleased)
	for _, action := range actions {
		ev := host.KeyEvent{Action: action, Key: key, KeyCode: code}
		if m.deliver(func() error { return m.h.DeliverKey(ev) }) {
			return true
		}
	}
	return false
}

// mouse maps one terminal mouse report to sketch events.
func (m *model) mouse(msg tea.MouseMsg) []host.MouseEvent {
	base := host.MouseEvent{X: msg.X, Y: msg.Y}
	switch msg.Button {
	case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown:
		base.Action = host.MouseWheel
		base.Count = 1
		if msg.Button == tea.MouseButtonWheelUp {
			base.Count = -1
		}
		return []host.MouseEvent{base}
	}

	switch msg.Action {
	case tea.MouseActionPress:
		m.pressed = buttonOf(msg.Button)
		m.dragged = false
		base.Action = host.MousePressed
		base.Button = m.pressed
		base.Count = 1
		return []host.MouseEvent{base}

	case tea.MouseActionRelease:
		base.Action = host.MouseReleased
		base.Button = m.pressed
		out := []host.MouseEvent{base}
		if !m.dragged && m.pressed != host.ButtonNone {
			click := base
			click.Action = host.MouseClicked
			click.Count = 1
			out = append(out, click)
		}
		m.pressed = host.ButtonNone
		return out

	case tea.MouseActionMotion:
		if m.pressed != host.ButtonNone {
			m.dragged = true
			base.Action = host.MouseDragged
			base.Button = m.pressed
		} else {
			base.Action = host.MouseMoved
		}
		return []host.MouseEvent{base}
	}
	return nil
}

func buttonOf(b tea.MouseButton) int {
	switch b {
	case tea.MouseButtonLeft:
		return host.ButtonLeft
	case tea.MouseButtonMiddle:
		return host.ButtonCenter
	case tea.MouseButtonRight:
		return host.ButtonRight
	}
	return host.ButtonNone
}

// closeSurface is the terminal's window close: listeners run, the program
// quits, and the sketch learns of it through them.
func (m model) closeSurface() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.h.BasicSurface().Close()
	return m, tea.Quit
}

// finish is the orderly shutdown after Exit.
func (m model) finish() (tea.Model, tea.Cmd) {
	m.quitting = true
	_ = m.sk.Stop()
	m.sk.ExitActual()
	return m, tea.Quit
}

func (m model) tick() tea.Cmd {
	fps := m.h.State().FrameRate
	if fps <= 0 {
		fps = 60
	}
	return tea.Tick(time.Duration(float64(time.Second)/fps), func(time.Time) tea.Msg {
		return tickMsg{}
	})
}
