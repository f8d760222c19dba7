// Package state holds the single source of truth for the console: peak
// parameters, the prediction, the active mode and tab, and the FWHM
// estimator form. Every mutation returns the request it triggers, if any,
// so the caller decides where the network call runs.
package state

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/raphaelgruber/xrdthermo/internal/peak"
)

// ErrInvalidInput indicates an estimator field that is not a number.
var ErrInvalidInput = errors.New("invalid numeric input")

// Defaults of a fresh controller.
var (
	DefaultParams = peak.Parameters{Position: 25.64, Width: 0.22, Height: 270}
)

const (
	DefaultTemperature        = 25.0
	DefaultEstimatorPosition  = "30.0"
	DefaultEstimatorIntensity = "500"
	DefaultTimeout            = 10 * time.Second
)

// Config seeds a Controller.
type Config struct {
	Params      peak.Parameters
	Temperature float64
	AutoSync    bool
	// Timeout bounds every exchange. Zero uses DefaultTimeout.
	Timeout time.Duration
}

// DefaultConfig returns the initial values of the console.
func DefaultConfig() Config {
	return Config{
		Params:      DefaultParams,
		Temperature: DefaultTemperature,
		Timeout:     DefaultTimeout,
	}
}

// EstimatorState is the FWHM tab's form and result.
type EstimatorState struct {
	PositionText  string
	IntensityText string

	// Estimate is valid only when HasEstimate is set.
	Estimate    float64
	PeakShift   float64
	HasEstimate bool
	// Visible is set once an estimate arrived and the result card is shown.
	Visible bool

	Phase ApplyPhase
	// Err is the last estimation failure, cleared by the next success.
	Err error
}

// State is a copy of everything a view needs.
type State struct {
	Params      peak.Parameters
	Temperature float64
	Mode        Mode
	Tab         Tab
	Estimator   EstimatorState

	pending [numKinds]bool
	results [numKinds]Result
}

// Pending reports whether an exchange of kind is in flight.
func (s State) Pending(kind Kind) bool {
	return s.pending[kind]
}

// Last returns the most recent resolved result of kind.
func (s State) Last(kind Kind) Result {
	return s.results[kind]
}

// Curve synthesizes the peak for the current parameters.
func (s State) Curve() peak.Curve {
	return peak.Synthesize(s.Params, s.Temperature)
}

// Controller owns the console state. Methods are safe for concurrent use,
// but the intended model is a single event loop calling them in order while
// Exchange.Run executes elsewhere.
type Controller struct {
	mu        sync.Mutex
	predictor Predictor
	logger    *slog.Logger
	timeout   time.Duration
	base      context.Context
	stop      context.CancelFunc

	params      peak.Parameters
	temperature float64
	mode        Mode
	tab         Tab
	estimator   EstimatorState
	apply       ApplySequence

	gen     [numKinds]uint64
	cancel  [numKinds]context.CancelFunc
	results [numKinds]Result
	closed  bool
}

// New creates a controller backed by predictor.
// A nil logger discards all log output.
func New(predictor Predictor, cfg Config, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	base, stop := context.WithCancel(context.Background())
	mode := ModeForward
	if cfg.AutoSync {
		mode = ModeInverse
	}

	return &Controller{
		predictor:   predictor,
		logger:      logger,
		timeout:     cfg.Timeout,
		base:        base,
		stop:        stop,
		params:      cfg.Params,
		temperature: cfg.Temperature,
		mode:        mode,
		tab:         TabPredictor,
		estimator: EstimatorState{
			PositionText:  DefaultEstimatorPosition,
			IntensityText: DefaultEstimatorIntensity,
		},
	}
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := State{
		Params:      c.params,
		Temperature: c.temperature,
		Mode:        c.mode,
		Tab:         c.tab,
		Estimator:   c.estimator,
		results:     c.results,
	}
	s.Estimator.Phase = c.apply.Phase()
	for k := range c.cancel {
		s.pending[k] = c.cancel[k] != nil
	}
	return s
}

// Start issues the initial prediction when the console opens in forward mode.
func (c *Controller) Start() *Exchange {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mode != ModeForward {
		return nil
	}
	return c.issueLocked(KindForward, forwardCall(c.predictor, c.params))
}

// SetPosition updates the peak position.
func (c *Controller) SetPosition(v float64) *Exchange {
	return c.setParam(func(p *peak.Parameters) { p.Position = v })
}

// SetWidth updates the peak FWHM.
func (c *Controller) SetWidth(v float64) *Exchange {
	return c.setParam(func(p *peak.Parameters) { p.Width = v })
}

// SetHeight updates the peak intensity.
func (c *Controller) SetHeight(v float64) *Exchange {
	return c.setParam(func(p *peak.Parameters) { p.Height = v })
}

// SetParams replaces all three peak parameters at once.
func (c *Controller) SetParams(params peak.Parameters) *Exchange {
	return c.setParam(func(p *peak.Parameters) { *p = params })
}

func (c *Controller) setParam(mutate func(*peak.Parameters)) *Exchange {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setParamLocked(mutate)
}

func (c *Controller) setParamLocked(mutate func(*peak.Parameters)) *Exchange {
	mutate(&c.params)
	if c.mode != ModeForward {
		return nil
	}
	return c.issueLocked(KindForward, forwardCall(c.predictor, c.params))
}

// SetTemperature updates the temperature. In inverse mode this simulates the
// peak parameters for it; in forward mode the value is only stored.
func (c *Controller) SetTemperature(v float64) *Exchange {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.temperature = v
	if c.mode != ModeInverse {
		return nil
	}
	return c.issueLocked(KindInverse, inverseCall(c.predictor, v))
}

// SetAutoSync switches between forward (false) and inverse (true) mode.
// No request is issued; a pending exchange of the mode being left is dropped.
func (c *Controller) SetAutoSync(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := ModeForward
	if enabled {
		next = ModeInverse
	}
	if next == c.mode {
		return
	}

	if c.mode == ModeForward {
		c.invalidateLocked(KindForward)
	} else {
		c.invalidateLocked(KindInverse)
	}
	c.mode = next
	c.logger.Debug("mode changed", "mode", next.String())
}

// ToggleMode flips between forward and inverse mode.
func (c *Controller) ToggleMode() {
	c.SetAutoSync(c.Snapshot().Mode == ModeForward)
}

// SetTab selects the active view.
func (c *Controller) SetTab(tab Tab) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tab = tab
}

// SetEstimatorInput stores the raw text of the estimator form.
func (c *Controller) SetEstimatorInput(position, intensity string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.estimator.PositionText = position
	c.estimator.IntensityText = intensity
}

// EstimateFWHM requests a baseline width for the form's values.
// Non-numeric input issues no request and returns ErrInvalidInput.
func (c *Controller) EstimateFWHM() (*Exchange, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	pos, err := ParseNumber("peak position", c.estimator.PositionText)
	if err != nil {
		c.estimator.Err = err
		return nil, err
	}
	intensity, err := ParseNumber("max intensity", c.estimator.IntensityText)
	if err != nil {
		c.estimator.Err = err
		return nil, err
	}

	c.estimator.Err = nil
	return c.issueLocked(KindEstimate, estimateCall(c.predictor, pos, intensity)), nil
}

// BeginApply starts copying the current estimate into the width.
// It returns false when there is no estimate or a sequence is running.
func (c *Controller) BeginApply() (ApplyStep, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.estimator.HasEstimate || c.closed {
		return ApplyStep{}, false
	}
	return c.apply.Begin(c.estimator.Estimate)
}

// AdvanceApply handles an elapsed apply step. When the sequence writes the
// width it also switches to the predictor tab and returns the prediction
// that the width change triggers. schedule reports whether next must be
// scheduled.
func (c *Controller) AdvanceApply(seq uint64) (next ApplyStep, schedule bool, ex *Exchange) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, fire, ok := c.apply.Advance(seq)
	if !ok {
		return ApplyStep{}, false, nil
	}
	if fire {
		width := c.apply.Value()
		c.logger.Info("applying estimated fwhm", "fwhm", width)
		ex = c.setParamLocked(func(p *peak.Parameters) { p.Width = width })
		c.tab = TabPredictor
	}
	return next, next.After > 0, ex
}

// CancelApply aborts a running apply sequence.
func (c *Controller) CancelApply() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.apply.Cancel()
}

// Resolve applies a completed exchange. Only the newest exchange of each kind
// may change state; older ones are reported as stale.
func (c *Controller) Resolve(o Outcome) Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	res := Result{Kind: o.Kind, Gen: o.Gen}
	if o.Kind < 0 || o.Kind >= numKinds || o.Gen != c.gen[o.Kind] || c.closed {
		res.Status = StatusStale
		c.logger.Debug("stale response discarded", "kind", o.Kind.String(), "gen", o.Gen)
		return res
	}
	c.releaseLocked(o.Kind)

	if o.Err != nil {
		if superseded(o.Err) {
			res.Status = StatusStale
			return res
		}
		res.Status = StatusFailed
		res.Err = o.Err
		c.results[o.Kind] = res
		if o.Kind == KindEstimate {
			c.estimator.Err = o.Err
		}
		c.logger.Warn("exchange failed", "kind", o.Kind.String(), "gen", o.Gen, "error", o.Err)
		return res
	}

	switch o.Kind {
	case KindForward:
		c.temperature = o.Temperature
	case KindInverse:
		c.params = o.Params
	case KindEstimate:
		c.estimator.Estimate = o.Estimate.FWHM
		c.estimator.PeakShift = o.Estimate.PeakShift
		c.estimator.HasEstimate = true
		c.estimator.Visible = true
		c.estimator.Err = nil
	}

	res.Status = StatusApplied
	c.results[o.Kind] = res
	c.logger.Debug("exchange applied", "kind", o.Kind.String(), "gen", o.Gen)
	return res
}

// Close cancels all pending exchanges and the apply sequence. Exchanges
// resolved afterwards are stale and issue nothing.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	for k := Kind(0); k < numKinds; k++ {
		c.invalidateLocked(k)
	}
	c.apply.Cancel()
	c.stop()
}

// issueLocked supersedes any pending exchange of kind and creates a new one.
func (c *Controller) issueLocked(kind Kind, call func(context.Context) Outcome) *Exchange {
	if c.closed {
		return nil
	}
	c.invalidateLocked(kind)

	ctx, cancel := context.WithTimeout(c.base, c.timeout)
	c.cancel[kind] = cancel

	return &Exchange{
		Kind: kind,
		Gen:  c.gen[kind],
		ctx:  ctx,
		call: call,
	}
}

// invalidateLocked bumps the generation of kind and cancels its request.
func (c *Controller) invalidateLocked(kind Kind) {
	c.gen[kind]++
	c.releaseLocked(kind)
}

func (c *Controller) releaseLocked(kind Kind) {
	if c.cancel[kind] != nil {
		c.cancel[kind]()
		c.cancel[kind] = nil
	}
}

// ParseNumber parses a free-text numeric field. field names the input in
// the returned error.
func ParseNumber(field, text string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s %q", ErrInvalidInput, field, text)
	}
	return v, nil
}
