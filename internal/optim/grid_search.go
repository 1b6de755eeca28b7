// Package optim searches controller gains against a simulated vessel.
package optim

import (
	"context"
	"errors"
	"math"
)

var ErrNoCandidates = errors.New("optim: no candidate evaluated successfully")

// Objective scores one parameter set. Lower is better.
type Objective func(ctx context.Context, params map[string]float64) (float64, error)

type Result struct {
	Params    map[string]float64 `json:"params"`
	Score     float64            `json:"score"`
	Evaluated int                `json:"evaluated"`
	Failed    int                `json:"failed"`
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Size is the number of grid points.
func (g *GridSearch) Size() int {
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Search evaluates every grid point and returns the lowest score. Candidates
// whose objective fails or scores NaN are counted and skipped.
func (g *GridSearch) Search(ctx context.Context, objective Objective) (*Result, error) {
	res := &Result{Score: math.Inf(1)}
	if err := g.searchRecursive(ctx, 0, make(map[string]float64), objective, res); err != nil {
		return nil, err
	}
	if res.Params == nil {
		return nil, ErrNoCandidates
	}
	return res, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	objective Objective,
	res *Result,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		val, err := objective(ctx, current)
		if err != nil || math.IsNaN(val) {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			res.Failed++
			return nil
		}
		res.Evaluated++
		if val < res.Score {
			res.Score = val
			res.Params = make(map[string]float64, len(current))
			for k, v := range current {
				res.Params[k] = v
			}
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, objective, res); err != nil {
			return err
		}
	}
	return nil
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}
