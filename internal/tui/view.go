package tui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"
	"github.com/raphaelgruber/xrdthermo/internal/metrics"
	"github.com/raphaelgruber/xrdthermo/internal/render"
	"github.com/raphaelgruber/xrdthermo/internal/state"
)

const plotHeight = 12

// View renders the console.
func (m Model) View() tea.View {
	if m.quitting {
		return tea.NewView("")
	}
	return tea.NewView(m.renderContent())
}

func (m Model) renderContent() string {
	s := m.ctrl.Snapshot()

	var b strings.Builder
	b.WriteString(m.header(s.Tab))
	b.WriteString("\n\n")
	if s.Tab == state.TabFWHM {
		b.WriteString(m.estimatorView(s))
	} else {
		b.WriteString(m.predictorView(s))
	}
	if footer := m.footer(); footer != "" {
		b.WriteString(footer)
		b.WriteByte('\n')
	}
	return b.String()
}

// footer summarizes request latency per operation.
func (m Model) footer() string {
	snap := m.stats.Snapshot()
	ops := []struct {
		name string
		op   *metrics.OperationSnapshot
	}{
		{"predict", snap.Predict},
		{"simulate", snap.Simulate},
		{"estimate", snap.EstimateFWHM},
	}

	var parts []string
	for _, o := range ops {
		if o.op == nil {
			continue
		}
		part := fmt.Sprintf("%s %d× avg %.0fms", o.name, o.op.Count, o.op.AvgTimeMs)
		if o.op.Failures > 0 {
			part += fmt.Sprintf(" (%d failed)", o.op.Failures)
		}
		parts = append(parts, part)
	}
	if len(parts) == 0 {
		return ""
	}
	return m.theme.hintStyle().Render(strings.Join(parts, " · "))
}

func (m Model) header(active state.Tab) string {
	tabs := make([]string, 0, 2)
	for _, tab := range []state.Tab{state.TabPredictor, state.TabFWHM} {
		if tab == active {
			tabs = append(tabs, m.theme.activeTabStyle().Render(tab.String()))
		} else {
			tabs = append(tabs, m.theme.tabStyle().Render(tab.String()))
		}
	}
	title := m.theme.titleStyle().Render("XRD THERMO CONSOLE")
	return title + "  " + lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) predictorView(s state.State) string {
	var b strings.Builder

	mode := m.theme.selectedStyle().Render(s.Mode.String())
	fmt.Fprintf(&b, "%s  %s\n\n", mode, m.theme.hintStyle().Render(s.Mode.Description()))

	b.WriteString(m.temperatureCard(s))
	b.WriteString("\n\n")

	for i, sl := range slidersFor(s.Mode) {
		b.WriteString(m.sliderRow(sl, sliderValue(s, sl), i == m.selected))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')

	curve := s.Curve()
	b.WriteString(render.ASCII(curve, m.plotWidth(), plotHeight))
	fmt.Fprintf(&b, "%s  Peak shift %+.4f°\n",
		m.theme.badgeStyle(curve.Axis.Severity).Render(render.Badge(curve.Axis)),
		s.Params.Shift())

	if line := m.statusLine(s); line != "" {
		b.WriteString(line)
		b.WriteByte('\n')
	}

	b.WriteString(m.theme.hintStyle().Render("↑/↓ select  ←/→ adjust (shift ×10)  m mode  tab estimator  q quit"))
	b.WriteByte('\n')
	return b.String()
}

func (m Model) temperatureCard(s state.State) string {
	label := "Predicted Temperature"
	if s.Mode == state.ModeInverse {
		label = "Target Temperature"
	}
	value := m.theme.valueStyle().Render(fmt.Sprintf("%.2f °C", s.Temperature))
	if s.Pending(state.KindForward) || s.Pending(state.KindInverse) {
		value += " " + m.theme.hintStyle().Render("updating…")
	}
	return m.theme.cardStyle().Render(label + "\n" + value)
}

func (m Model) sliderRow(sl state.Slider, value float64, selected bool) string {
	marker := "  "
	name := fmt.Sprintf("%-14s", sl.Name)
	if selected {
		marker = m.theme.selectedStyle().Render("› ")
		name = m.theme.selectedStyle().Render(name)
	}
	return fmt.Sprintf("%s%s %s %s", marker, name, m.bar.ViewAs(sl.Fraction(value)), sl.Format(value))
}

// statusLine describes the last exchange of the active mode.
func (m Model) statusLine(s state.State) string {
	kind := state.KindForward
	if s.Mode == state.ModeInverse {
		kind = state.KindInverse
	}
	if s.Pending(kind) {
		return m.theme.hintStyle().Render(fmt.Sprintf("… %s in progress", kind))
	}

	res := s.Last(kind)
	switch res.Status {
	case state.StatusApplied:
		return m.theme.successStyle().Render(fmt.Sprintf("✓ %s synced", kind))
	case state.StatusFailed:
		return m.theme.errorStyle().Render(fmt.Sprintf("✗ %s failed: %v", kind, res.Err))
	default:
		return ""
	}
}

func (m Model) estimatorView(s state.State) string {
	var b strings.Builder

	b.WriteString(m.theme.titleStyle().Render("Baseline FWHM Estimator"))
	b.WriteString("\n\n")

	labels := []string{"Peak Position (2θ°)", "Max Intensity"}
	for i, in := range m.inputs {
		label := labels[i]
		if i == m.selected {
			label = m.theme.selectedStyle().Render(label)
		}
		fmt.Fprintf(&b, "%s\n%s\n\n", label, in.View())
	}

	est := s.Estimator
	if est.Err != nil {
		b.WriteString(m.theme.errorStyle().Render(fmt.Sprintf("✗ %v", est.Err)))
		b.WriteString("\n\n")
	}
	if s.Pending(state.KindEstimate) {
		b.WriteString(m.theme.hintStyle().Render("… estimating"))
		b.WriteString("\n\n")
	}

	if est.Visible {
		card := fmt.Sprintf("Baseline FWHM  %s\nPeak shift     %s",
			m.theme.valueStyle().Render(fmt.Sprintf("%.4f°", est.Estimate)),
			m.theme.valueStyle().Render(fmt.Sprintf("%+.4f°", est.PeakShift)))
		b.WriteString(m.theme.cardStyle().Render(card))
		b.WriteString("\n")
		b.WriteString(m.applyButton(est.Phase))
		b.WriteString("\n\n")
	}

	b.WriteString(m.theme.hintStyle().Render("↑/↓ field  enter estimate  a apply  esc cancel  tab predictor"))
	b.WriteByte('\n')
	return b.String()
}

func (m Model) applyButton(phase state.ApplyPhase) string {
	if phase == state.ApplyIdle {
		return m.theme.selectedStyle().Render("[ Apply Value to Predictor ]")
	}
	return m.theme.successStyle().Render("[ FWHM Applied! ]")
}

func (m Model) plotWidth() int {
	return max(m.width-10, 20)
}

func sliderValue(s state.State, sl state.Slider) float64 {
	switch sl {
	case state.PositionSlider:
		return s.Params.Position
	case state.WidthSlider:
		return s.Params.Width
	case state.HeightSlider:
		return s.Params.Height
	default:
		return s.Temperature
	}
}

// Snapshot renders the predictor view for s without interaction, for
// terminals that cannot host the console.
func Snapshot(s state.State, width int) string {
	m := Model{theme: DefaultTheme, width: width}
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", s.Mode, s.Mode.Description())
	fmt.Fprintf(&b, "Temperature: %.2f °C\n", s.Temperature)
	fmt.Fprintf(&b, "Position: %s  FWHM: %s  Intensity: %s\n\n",
		state.PositionSlider.Format(s.Params.Position),
		state.WidthSlider.Format(s.Params.Width),
		state.HeightSlider.Format(s.Params.Height))

	curve := s.Curve()
	b.WriteString(render.ASCII(curve, m.plotWidth(), plotHeight))
	fmt.Fprintf(&b, "%s  Peak shift %+.4f°\n", render.Badge(curve.Axis), s.Params.Shift())
	if res := s.Last(state.KindForward); res.Status == state.StatusFailed {
		fmt.Fprintf(&b, "prediction failed: %v\n", res.Err)
	}
	return b.String()
}
