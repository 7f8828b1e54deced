package optim

import (
	"math"
	"math/rand"

	"github.com/meenmo/quantlib/logger"
)

// BasinHopping is a multi-start global search: each round perturbs the
// current minimum uniformly by ±StepSize, re-minimises locally and accepts the
// new point by the Metropolis rule at Temperature. It stops after MaxIter
// rounds or NoImprove rounds without a better global minimum. Perturbations
// come from a source seeded with Seed.
func BasinHopping(p Problem, x0 []float64, opts Options) (Result, error) {
	opts = opts.withDefaults()
	log := logger.Or(opts.Logger)
	rng := rand.New(rand.NewSource(opts.Seed))

	cur, err := Minimize(p, x0, opts)
	if err != nil {
		return cur, err
	}
	best := cur
	best.X = append([]float64(nil), cur.X...)

	stale, rounds := 0, 0
	trial := make([]float64, len(x0))
	for rounds < opts.MaxIter && stale < opts.NoImprove {
		rounds++
		for i, v := range cur.X {
			trial[i] = v + opts.StepSize*(2*rng.Float64()-1)
		}
		next, err := Minimize(p, trial, opts)
		if err != nil {
			stale++
			continue
		}
		if next.F < cur.F || rng.Float64() < math.Exp(-(next.F-cur.F)/opts.Temperature) {
			cur = next
		}
		if next.F < best.F-opts.Tolerance {
			best = next
			best.X = append([]float64(nil), next.X...)
			stale = 0
		} else {
			stale++
		}
	}
	best.Iterations = rounds
	if stale >= opts.NoImprove {
		best.Status = Converged
	} else {
		best.Status = IterationLimit
	}
	log.Debug("basin hopping done", "rounds", rounds, "f", best.F, "status", best.Status.String())
	return best, nil
}
