// Package tui is the interactive terminal console: the temperature predictor
// with its peak plot and the FWHM estimator.
package tui

import (
	"fmt"
	"time"

	"charm.land/bubbles/v2/progress"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/raphaelgruber/xrdthermo/internal/metrics"
	"github.com/raphaelgruber/xrdthermo/internal/state"
)

const (
	inputPosition = iota
	inputIntensity
)

// outcomeMsg carries a finished exchange back to the event loop.
type outcomeMsg state.Outcome

// applyTickMsg fires when an apply step delay has elapsed.
type applyTickMsg struct {
	seq uint64
}

// Model is the bubbletea model for the console.
type Model struct {
	ctrl   *state.Controller
	stats  *metrics.Collector
	theme  Theme
	bar    progress.Model
	inputs []textinput.Model

	// selected is the focused slider on the predictor tab and the focused
	// field on the estimator tab.
	selected int
	width    int
	quitting bool
}

// New creates the console model for ctrl. stats may be nil; when set, the
// footer shows request statistics.
func New(ctrl *state.Controller, stats *metrics.Collector) Model {
	bar := progress.New(
		progress.WithDefaultBlend(),
		progress.WithWidth(30),
		progress.WithoutPercentage(),
	)

	s := ctrl.Snapshot()
	pos := textinput.New()
	pos.Prompt = "› "
	pos.Placeholder = state.DefaultEstimatorPosition
	pos.CharLimit = 12
	pos.SetValue(s.Estimator.PositionText)

	intensity := textinput.New()
	intensity.Prompt = "› "
	intensity.Placeholder = state.DefaultEstimatorIntensity
	intensity.CharLimit = 12
	intensity.SetValue(s.Estimator.IntensityText)

	return Model{
		ctrl:   ctrl,
		stats:  stats,
		theme:  DefaultTheme,
		bar:    bar,
		inputs: []textinput.Model{pos, intensity},
		width:  80,
	}
}

// Init issues the initial prediction.
func (m Model) Init() tea.Cmd {
	return run(m.ctrl.Start())
}

// Update handles messages and returns the updated model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case outcomeMsg:
		m.ctrl.Resolve(state.Outcome(msg))
		return m, nil

	case applyTickMsg:
		next, schedule, ex := m.ctrl.AdvanceApply(msg.seq)
		var cmds []tea.Cmd
		if schedule {
			cmds = append(cmds, applyTick(next))
		}
		if s := m.ctrl.Snapshot(); s.Tab == state.TabPredictor && next.Phase == state.ApplyApplied {
			// The width was written and the view moved to the predictor.
			m.blurInputs()
			m.selected = 0
			if s.Mode == state.ModeForward {
				m.selected = 1
			}
		}
		if ex != nil {
			cmds = append(cmds, run(ex))
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "ctrl+c":
		return m.quit()
	case "tab":
		return m.switchTab()
	}

	if m.ctrl.Snapshot().Tab == state.TabFWHM {
		return m.handleEstimatorKey(msg)
	}

	s := m.ctrl.Snapshot()
	sliders := slidersFor(s.Mode)
	switch key {
	case "q", "esc":
		return m.quit()
	case "m":
		m.ctrl.ToggleMode()
		m.selected = 0
		return m, nil
	case "up", "k":
		m.selected = (m.selected + len(sliders) - 1) % len(sliders)
	case "down", "j":
		m.selected = (m.selected + 1) % len(sliders)
	case "left", "h":
		return m, m.nudge(s, -1)
	case "right", "l":
		return m, m.nudge(s, 1)
	case "shift+left", "H":
		return m, m.nudge(s, -10)
	case "shift+right", "L":
		return m, m.nudge(s, 10)
	}
	return m, nil
}

func (m Model) handleEstimatorKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.ctrl.CancelApply()
		return m, nil
	case "up", "down":
		m.selected = 1 - m.selected
		return m, m.focusInput()
	case "enter":
		ex, err := m.ctrl.EstimateFWHM()
		if err != nil {
			return m, nil
		}
		return m, run(ex)
	case "a":
		step, ok := m.ctrl.BeginApply()
		if !ok {
			return m, nil
		}
		return m, applyTick(step)
	}

	var cmd tea.Cmd
	m.inputs[m.selected], cmd = m.inputs[m.selected].Update(msg)
	m.ctrl.SetEstimatorInput(m.inputs[inputPosition].Value(), m.inputs[inputIntensity].Value())
	return m, cmd
}

func (m Model) switchTab() (tea.Model, tea.Cmd) {
	next := m.ctrl.Snapshot().Tab.Next()
	m.ctrl.SetTab(next)
	m.selected = 0
	if next == state.TabFWHM {
		return m, m.focusInput()
	}
	m.blurInputs()
	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.ctrl.Close()
	return m, tea.Quit
}

// nudge moves the selected slider and returns the request it triggers.
func (m Model) nudge(s state.State, steps int) tea.Cmd {
	if s.Mode == state.ModeInverse {
		return run(m.ctrl.SetTemperature(state.TemperatureSlider.Nudge(s.Temperature, steps)))
	}

	p := s.Params
	switch m.selected {
	case 0:
		return run(m.ctrl.SetPosition(state.PositionSlider.Nudge(p.Position, steps)))
	case 1:
		return run(m.ctrl.SetWidth(state.WidthSlider.Nudge(p.Width, steps)))
	default:
		return run(m.ctrl.SetHeight(state.HeightSlider.Nudge(p.Height, steps)))
	}
}

// focusInput focuses the selected estimator field. Inputs are held by value
// in the slice, which Model copies share, so this mutates in place.
func (m Model) focusInput() tea.Cmd {
	for i := range m.inputs {
		if i != m.selected {
			m.inputs[i].Blur()
		}
	}
	return m.inputs[m.selected].Focus()
}

func (m Model) blurInputs() {
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
}

// slidersFor lists the controls that are user input in mode.
func slidersFor(mode state.Mode) []state.Slider {
	if mode == state.ModeInverse {
		return []state.Slider{state.TemperatureSlider}
	}
	return []state.Slider{state.PositionSlider, state.WidthSlider, state.HeightSlider}
}

// run executes ex off the event loop.
func run(ex *state.Exchange) tea.Cmd {
	if ex == nil {
		return nil
	}
	return func() tea.Msg {
		return outcomeMsg(ex.Run())
	}
}

func applyTick(step state.ApplyStep) tea.Cmd {
	return tea.Tick(step.After, func(time.Time) tea.Msg {
		return applyTickMsg{seq: step.Seq}
	})
}

// Run starts the interactive console and blocks until the user quits.
func Run(ctrl *state.Controller, stats *metrics.Collector, opts ...tea.ProgramOption) error {
	p := tea.NewProgram(New(ctrl, stats), opts...)
	_, err := p.Run()
	ctrl.Close()
	if err != nil {
		return fmt.Errorf("console UI error: %w", err)
	}
	return nil
}
