package state

import (
	"context"
	"errors"

	"github.com/raphaelgruber/xrdthermo/internal/client"
	"github.com/raphaelgruber/xrdthermo/internal/peak"
)

// Kind identifies one of the request/response exchanges with the service.
type Kind int

const (
	KindForward Kind = iota
	KindInverse
	KindEstimate

	numKinds
)

func (k Kind) String() string {
	switch k {
	case KindForward:
		return "predict"
	case KindInverse:
		return "simulate"
	case KindEstimate:
		return "estimate-fwhm"
	default:
		return "unknown"
	}
}

// Status is the outcome class of a resolved exchange.
type Status int

const (
	// StatusNone means no exchange of this kind has resolved yet.
	StatusNone Status = iota
	StatusApplied
	StatusFailed
	// StatusStale means a newer exchange of the same kind superseded this one.
	StatusStale
)

func (s Status) String() string {
	switch s {
	case StatusApplied:
		return "applied"
	case StatusFailed:
		return "failed"
	case StatusStale:
		return "stale"
	default:
		return "none"
	}
}

// Result reports how the controller handled a completed exchange.
type Result struct {
	Kind   Kind
	Gen    uint64
	Status Status
	Err    error
}

// OK reports whether the exchange updated state.
func (r Result) OK() bool {
	return r.Status == StatusApplied
}

// Predictor is the remote service the controller talks to.
type Predictor interface {
	Predict(ctx context.Context, params peak.Parameters) (float64, error)
	Simulate(ctx context.Context, temperature float64) (peak.Parameters, error)
	EstimateFWHM(ctx context.Context, position, intensity float64) (client.Estimate, error)
}

// Outcome is the raw result of running an Exchange.
type Outcome struct {
	Kind        Kind
	Gen         uint64
	Temperature float64
	Params      peak.Parameters
	Estimate    client.Estimate
	Err         error
}

// Exchange is one issued request. Run performs the network call and may be
// executed on any goroutine; it does not touch controller state.
type Exchange struct {
	Kind Kind
	Gen  uint64

	ctx  context.Context
	call func(ctx context.Context) Outcome
}

// Run executes the request and returns its outcome for Controller.Resolve.
func (e *Exchange) Run() Outcome {
	o := e.call(e.ctx)
	o.Kind = e.Kind
	o.Gen = e.Gen
	return o
}

// superseded reports whether err came from cancelling a replaced request.
func superseded(err error) bool {
	return errors.Is(err, context.Canceled)
}

func forwardCall(p Predictor, params peak.Parameters) func(context.Context) Outcome {
	return func(ctx context.Context) Outcome {
		temp, err := p.Predict(ctx, params)
		return Outcome{Temperature: temp, Err: err}
	}
}

func inverseCall(p Predictor, temperature float64) func(context.Context) Outcome {
	return func(ctx context.Context) Outcome {
		params, err := p.Simulate(ctx, temperature)
		return Outcome{Params: params, Err: err}
	}
}

func estimateCall(p Predictor, position, intensity float64) func(context.Context) Outcome {
	return func(ctx context.Context) Outcome {
		est, err := p.EstimateFWHM(ctx, position, intensity)
		return Outcome{Estimate: est, Err: err}
	}
}
