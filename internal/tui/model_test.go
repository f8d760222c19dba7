package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/raphaelgruber/xrdthermo/internal/client"
	"github.com/raphaelgruber/xrdthermo/internal/metrics"
	"github.com/raphaelgruber/xrdthermo/internal/peak"
	"github.com/raphaelgruber/xrdthermo/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPredictor struct {
	mu        sync.Mutex
	temp      float64
	params    peak.Parameters
	estimate  client.Estimate
	err       error
	predicted []peak.Parameters
	simulated []float64
}

func (s *stubPredictor) Predict(_ context.Context, p peak.Parameters) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.predicted = append(s.predicted, p)
	return s.temp, s.err
}

func (s *stubPredictor) Simulate(_ context.Context, t float64) (peak.Parameters, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.simulated = append(s.simulated, t)
	return s.params, s.err
}

func (s *stubPredictor) EstimateFWHM(context.Context, float64, float64) (client.Estimate, error) {
	return s.estimate, s.err
}

func (s *stubPredictor) lastPredicted() peak.Parameters {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.predicted) == 0 {
		return peak.Parameters{}
	}
	return s.predicted[len(s.predicted)-1]
}

func newModel(t *testing.T, p *stubPredictor) (Model, *state.Controller) {
	t.Helper()
	ctrl := state.New(p, state.DefaultConfig(), nil)
	t.Cleanup(ctrl.Close)
	return New(ctrl, nil), ctrl
}

var (
	keyRight      = tea.KeyPressMsg{Code: tea.KeyRight}
	keyShiftRight = tea.KeyPressMsg{Code: tea.KeyRight, Mod: tea.ModShift}
	keyDown       = tea.KeyPressMsg{Code: tea.KeyDown}
	keyTab        = tea.KeyPressMsg{Code: tea.KeyTab}
	keyEnter      = tea.KeyPressMsg{Code: tea.KeyEnter}
)

func runeKey(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

// drain runs cmd and feeds every console message it produces back into m.
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			m = drain(t, m, c)
		}
	case outcomeMsg, applyTickMsg:
		var next tea.Cmd
		m, next = update(t, m, msg)
		m = drain(t, m, next)
	}
	return m
}

func content(m Model) string {
	return m.renderContent()
}

func TestInitPredicts(t *testing.T) {
	p := &stubPredictor{temp: 123.4}
	m, ctrl := newModel(t, p)

	m = drain(t, m, m.Init())

	assert.Equal(t, 123.4, ctrl.Snapshot().Temperature)
	out := content(m)
	assert.Contains(t, out, "123.40 °C")
	assert.Contains(t, out, "✓ predict synced")
	assert.Contains(t, out, "Forward Mode")
}

func TestNudgeSliders(t *testing.T) {
	p := &stubPredictor{temp: 30}
	m, _ := newModel(t, p)

	m, cmd := update(t, m, keyRight)
	m = drain(t, m, cmd)
	assert.Equal(t, 25.641, p.lastPredicted().Position)

	m, cmd = update(t, m, keyShiftRight)
	m = drain(t, m, cmd)
	assert.Equal(t, 25.651, p.lastPredicted().Position)

	m, _ = update(t, m, keyDown)
	m, cmd = update(t, m, keyRight)
	drain(t, m, cmd)
	assert.Equal(t, 0.225, p.lastPredicted().Width)
}

func TestToggleModeSimulates(t *testing.T) {
	p := &stubPredictor{params: peak.Parameters{Position: 25.5, Width: 0.3, Height: 450}}
	m, ctrl := newModel(t, p)

	m, cmd := update(t, m, runeKey('m'))
	assert.Nil(t, cmd)
	assert.Equal(t, state.ModeInverse, ctrl.Snapshot().Mode)
	assert.Contains(t, content(m), "Inverse Mode")

	m, cmd = update(t, m, keyRight)
	m = drain(t, m, cmd)

	require.Len(t, p.simulated, 1)
	assert.Equal(t, 26.0, p.simulated[0])
	assert.Equal(t, p.params, ctrl.Snapshot().Params)
	assert.Contains(t, content(m), "MID RANGE")
}

func TestFailureInStatusLine(t *testing.T) {
	p := &stubPredictor{err: errors.New("service unavailable")}
	m, _ := newModel(t, p)

	m = drain(t, m, m.Init())
	assert.Contains(t, content(m), "✗ predict failed: service unavailable")
}

func TestEstimatorApplyFlow(t *testing.T) {
	p := &stubPredictor{temp: 40, estimate: client.Estimate{FWHM: 0.31, PeakShift: 4.36, Status: "success"}}
	m, ctrl := newModel(t, p)

	m, _ = update(t, m, keyTab)
	require.Equal(t, state.TabFWHM, ctrl.Snapshot().Tab)

	m, cmd := update(t, m, keyEnter)
	require.NotNil(t, cmd)
	m = drain(t, m, cmd)

	out := content(m)
	assert.Contains(t, out, "0.3100°")
	assert.Contains(t, out, "Apply Value to Predictor")

	m, cmd = update(t, m, runeKey('a'))
	require.NotNil(t, cmd)
	assert.Contains(t, content(m), "FWHM Applied!")

	m = drain(t, m, cmd)

	s := ctrl.Snapshot()
	assert.Equal(t, 0.31, s.Params.Width)
	assert.Equal(t, state.TabPredictor, s.Tab)
	assert.Equal(t, state.ApplyIdle, s.Estimator.Phase)
	assert.Equal(t, 0.31, p.lastPredicted().Width)
	assert.Equal(t, 1, m.selected, "width slider is selected after apply")
}

func TestEstimatorRejectsBadInput(t *testing.T) {
	p := &stubPredictor{}
	m, ctrl := newModel(t, p)

	m, _ = update(t, m, keyTab)
	ctrl.SetEstimatorInput("abc", "500")

	m, cmd := update(t, m, keyEnter)
	assert.Nil(t, cmd)
	assert.Contains(t, content(m), "invalid numeric input")
	assert.NotContains(t, content(m), "Apply Value")
}

func TestApplyWithoutEstimateIsIgnored(t *testing.T) {
	m, _ := newModel(t, &stubPredictor{})
	m, _ = update(t, m, keyTab)

	_, cmd := update(t, m, runeKey('a'))
	assert.Nil(t, cmd)
}

func TestQuit(t *testing.T) {
	m, ctrl := newModel(t, &stubPredictor{})

	m, cmd := update(t, m, runeKey('q'))
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
	assert.True(t, m.quitting)

	// closed controllers issue nothing
	assert.Nil(t, ctrl.SetPosition(25.7))
}

func TestSnapshot(t *testing.T) {
	ctrl := state.New(&stubPredictor{}, state.DefaultConfig(), nil)
	defer ctrl.Close()

	out := Snapshot(ctrl.Snapshot(), 80)
	assert.True(t, strings.HasPrefix(out, "Forward Mode  Predict Temp from XRD"))
	assert.Contains(t, out, "Temperature: 25.00 °C")
	assert.Contains(t, out, "Position: 25.640°")
	assert.Contains(t, out, "LOW RANGE (0-300)")
}

func TestFooterShowsStats(t *testing.T) {
	stats := metrics.NewCollector()
	ctrl := state.New(&stubPredictor{}, state.DefaultConfig(), nil)
	defer ctrl.Close()
	m := New(ctrl, stats)

	assert.NotContains(t, content(m), "avg")

	stats.RecordTiming(metrics.OpPredict, 12*time.Millisecond, false)
	stats.RecordTiming(metrics.OpPredict, 8*time.Millisecond, true)
	assert.Contains(t, content(m), "predict 2× avg 10ms (1 failed)")
}

func TestWindowResizeWidensPlot(t *testing.T) {
	m, _ := newModel(t, &stubPredictor{})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Equal(t, 110, m.plotWidth())
}
