// Package optim is the optimiser contract shared by the curve fitter and the
// portfolio weights: a local minimiser over gonum/optimize, a seeded basin
// hopping global search on top of it, and a Brent root finder.
package optim

import (
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/optimize"

	"github.com/meenmo/quantlib/config"
	"github.com/meenmo/quantlib/errs"
	"github.com/meenmo/quantlib/logger"
)

// Problem is an unconstrained minimisation. Constraints are the caller's job,
// either by reparametrisation or by penalty terms.
type Problem struct {
	Func func(x []float64) float64
	// Grad writes the gradient into grad. Nil means central finite differences.
	Grad func(grad, x []float64)
}

// Status is the outcome of a solve.
type Status int

const (
	Converged Status = iota
	IterationLimit
	Failed
)

func (s Status) String() string {
	switch s {
	case Converged:
		return "converged"
	case IterationLimit:
		return "iteration_limit"
	}
	return "failed"
}

// Options is the iteration budget and tolerances of a solve.
type Options struct {
	MaxIter     int     // basin-hopping rounds
	NoImprove   int     // rounds without a better minimum before stopping
	LocalIter   int     // major iterations of one local solve
	Tolerance   float64 // absolute objective tolerance
	Temperature float64
	StepSize    float64
	Seed        int64
	Logger      *slog.Logger
}

// DefaultOptions reads the active solver configuration.
func DefaultOptions() Options {
	s := config.GetConfig().Solver
	return Options{
		MaxIter:     s.MaxIter,
		NoImprove:   s.NoImprove,
		LocalIter:   s.LocalIter,
		Tolerance:   s.Tolerance,
		Temperature: s.Temperature,
		StepSize:    s.StepSize,
		Seed:        s.Seed,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MaxIter <= 0 {
		o.MaxIter = d.MaxIter
	}
	if o.NoImprove <= 0 {
		o.NoImprove = d.NoImprove
	}
	if o.LocalIter <= 0 {
		o.LocalIter = d.LocalIter
	}
	if o.Tolerance <= 0 {
		o.Tolerance = d.Tolerance
	}
	if o.Temperature <= 0 {
		o.Temperature = d.Temperature
	}
	if o.StepSize <= 0 {
		o.StepSize = d.StepSize
	}
	return o
}

// Result is the best point found.
type Result struct {
	X          []float64
	F          float64
	Iterations int
	Status     Status
}

// Minimize runs BFGS from x0 and falls back to Nelder-Mead when the line
// search breaks down. A failure of both is errs.OptimisationFailed.
func Minimize(p Problem, x0 []float64, opts Options) (Result, error) {
	opts = opts.withDefaults()
	log := logger.Or(opts.Logger)

	res, err := minimizeWith(p, x0, opts, &optimize.BFGS{})
	if err == nil {
		return res, nil
	}
	log.Debug("bfgs failed, retrying with nelder-mead", "err", err)

	// Restart from wherever BFGS got to; the simplex needs more steps.
	start := x0
	if res.X != nil && !math.IsInf(res.F, 0) && !math.IsNaN(res.F) {
		start = res.X
	}
	nm := opts
	nm.LocalIter = 10 * opts.LocalIter
	res, err2 := minimizeWith(p, start, nm, &optimize.NelderMead{})
	if err2 == nil {
		return res, nil
	}
	return Result{X: x0, F: math.NaN(), Status: Failed}, errs.Wrap(errs.OptimisationFailed, "optim.Minimize", nil,
		fmt.Errorf("bfgs: %v; nelder-mead: %w", err, err2))
}

func minimizeWith(p Problem, x0 []float64, opts Options, method optimize.Method) (Result, error) {
	f := func(x []float64) float64 {
		v := p.Func(x)
		if math.IsNaN(v) {
			return math.Inf(1)
		}
		return v
	}
	prob := optimize.Problem{Func: f}
	if _, ok := method.(*optimize.BFGS); ok {
		if p.Grad != nil {
			prob.Grad = func(grad, x []float64) { p.Grad(grad, x) }
		} else {
			prob.Grad = func(grad, x []float64) {
				fd.Gradient(grad, f, x, &fd.Settings{Formula: fd.Central})
			}
		}
	}

	settings := &optimize.Settings{
		MajorIterations:   opts.LocalIter,
		GradientThreshold: 1e-12,
		Converger: &optimize.FunctionConverge{
			Absolute:   opts.Tolerance,
			Iterations: 20,
		},
	}

	start := make([]float64, len(x0))
	copy(start, x0)
	r, err := optimize.Minimize(prob, start, settings, method)
	if r == nil {
		return Result{}, err
	}
	if err != nil && r.Status != optimize.IterationLimit {
		return Result{X: r.X, F: r.F}, err
	}
	if math.IsInf(r.F, 0) || math.IsNaN(r.F) {
		return Result{}, fmt.Errorf("non-finite objective %g", r.F)
	}

	status := Converged
	if r.Status == optimize.IterationLimit {
		status = IterationLimit
	}
	return Result{X: r.X, F: r.F, Iterations: r.Stats.MajorIterations, Status: status}, nil
}
