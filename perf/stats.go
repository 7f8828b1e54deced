package perf

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
)

// finite drops NaN values.
func finite(x []float64) []float64 {
	out := make([]float64, 0, len(x))
	for _, v := range x {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

func mean(x []float64) float64 {
	m, err := stats.Mean(finite(x))
	if err != nil {
		return math.NaN()
	}
	return m
}

func median(x []float64) float64 {
	m, err := stats.Median(finite(x))
	if err != nil {
		return math.NaN()
	}
	return m
}

func sampleStd(x []float64) float64 {
	x = finite(x)
	if len(x) < 2 {
		return math.NaN()
	}
	sd, _ := stats.StandardDeviationSample(x)
	return sd
}

func sampleVar(x []float64) float64 {
	x = finite(x)
	if len(x) < 2 {
		return math.NaN()
	}
	v, _ := stats.SampleVariance(x)
	return v
}

func populationStd(x []float64) float64 {
	sd, err := stats.StandardDeviationPopulation(finite(x))
	if err != nil {
		return math.NaN()
	}
	return sd
}

// quantile interpolates linearly between the order statistics around
// (n-1)q.
func quantile(x []float64, q float64) float64 {
	x = finite(x)
	if len(x) == 0 {
		return math.NaN()
	}
	sort.Float64s(x)
	h := float64(len(x)-1) * q
	lo := math.Floor(h)
	i := int(lo)
	if i+1 >= len(x) {
		return x[len(x)-1]
	}
	return x[i] + (h-lo)*(x[i+1]-x[i])
}
