package portfolio

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/meenmo/quantlib/utils"
)

// cluster is a node of the single linkage tree.
type cluster struct {
	leaves []int
	// minVar is the smallest member variance, used to order siblings.
	minVar float64
	// seq is the merge step that formed the node; -1 for leaves.
	seq int
}

// HierarchicalRiskParity allocates by recursive bisection of the assets
// ordered by a single linkage clustering on the distance √((1-ρ)/2).
// Weights are non-negative and sum to one.
func HierarchicalRiskParity(cov mat.Symmetric) ([]float64, error) {
	if err := checkCov("portfolio.HierarchicalRiskParity", cov); err != nil {
		return nil, err
	}
	order := quasiDiag(cov)
	w := make([]float64, len(order))
	for i := range w {
		w[i] = 1
	}
	bisect(cov, order, w)
	return w, nil
}

func distance(corr mat.Symmetric, i, j int) float64 {
	d := utils.RoundTo((1-corr.At(i, j))/2, 10)
	return math.Sqrt(math.Max(d, 0))
}

// quasiDiag returns the leaf order of the single linkage tree. Siblings are
// ordered leaves first, then by size, then by lower member variance, so the
// order depends on the matrix and not on how its assets are labelled.
func quasiDiag(cov mat.Symmetric) []int {
	n := cov.SymmetricDim()
	corr := Correlation(cov)
	nodes := make([]*cluster, n)
	for i := range nodes {
		nodes[i] = &cluster{leaves: []int{i}, minVar: cov.At(i, i), seq: -1}
	}
	for step := 0; len(nodes) > 1; step++ {
		a, b, best := 0, 1, math.Inf(1)
		for i := 0; i < len(nodes); i++ {
			for j := i + 1; j < len(nodes); j++ {
				if d := linkage(corr, nodes[i], nodes[j]); d < best {
					a, b, best = i, j, d
				}
			}
		}
		first, second := nodes[a], nodes[b]
		if siblingLess(second, first) {
			first, second = second, first
		}
		merged := &cluster{
			leaves: append(append([]int(nil), first.leaves...), second.leaves...),
			minVar: math.Min(first.minVar, second.minVar),
			seq:    step,
		}
		nodes[a] = merged
		nodes = append(nodes[:b], nodes[b+1:]...)
	}
	return nodes[0].leaves
}

func linkage(corr mat.Symmetric, x, y *cluster) float64 {
	d := math.Inf(1)
	for _, i := range x.leaves {
		for _, j := range y.leaves {
			d = math.Min(d, distance(corr, i, j))
		}
	}
	return d
}

func siblingLess(x, y *cluster) bool {
	if (x.seq < 0) != (y.seq < 0) {
		return x.seq < 0
	}
	if len(x.leaves) != len(y.leaves) {
		return len(x.leaves) < len(y.leaves)
	}
	if x.minVar != y.minVar {
		return x.minVar < y.minVar
	}
	if x.seq < 0 {
		return x.leaves[0] < y.leaves[0]
	}
	return x.seq < y.seq
}

// bisect splits order in halves, giving each half weight inversely
// proportional to its inverse-variance cluster variance.
func bisect(cov mat.Symmetric, order []int, w []float64) {
	if len(order) < 2 {
		return
	}
	mid := len(order) / 2
	left, right := order[:mid], order[mid:]
	vl, vr := clusterVar(cov, left), clusterVar(cov, right)
	alpha := 1 - vl/(vl+vr)
	for _, i := range left {
		w[i] *= alpha
	}
	for _, i := range right {
		w[i] *= 1 - alpha
	}
	bisect(cov, left, w)
	bisect(cov, right, w)
}

func clusterVar(cov mat.Symmetric, items []int) float64 {
	sub := subCov(cov, items)
	n := len(items)
	iv := make([]float64, n)
	for i := range iv {
		iv[i] = 1 / sub.At(i, i)
	}
	return quad(sub, normalise(iv))
}
