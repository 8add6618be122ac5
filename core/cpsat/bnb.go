package cpsat

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

const (
	freeVal   int8 = -1
	intTol         = 1e-6
	simplexTol     = 1e-7
)

type linExpr struct {
	vars   []Var
	coeffs []int64
	bound  int64
}

// bnbModel implements Model with branch and bound over the simplex LP
// relaxation.
type bnbModel struct {
	names []string
	leqs  []linExpr
	eqs   []linExpr
	obj   linExpr
}

func (m *bnbModel) AddBinaryVar(name string) Var {
	m.names = append(m.names, name)
	return Var(len(m.names) - 1)
}

func (m *bnbModel) AddLinearLeq(vars []Var, coeffs []int64, bound int64) {
	m.leqs = append(m.leqs, copyExpr(vars, coeffs, bound))
}

func (m *bnbModel) AddLinearEq(vars []Var, coeffs []int64, bound int64) {
	m.eqs = append(m.eqs, copyExpr(vars, coeffs, bound))
}

func (m *bnbModel) SetObjectiveMax(vars []Var, coeffs []int64) {
	m.obj = copyExpr(vars, coeffs, 0)
}

func copyExpr(vars []Var, coeffs []int64, bound int64) linExpr {
	e := linExpr{
		vars:   make([]Var, len(vars)),
		coeffs: make([]int64, len(coeffs)),
		bound:  bound,
	}
	copy(e.vars, vars)
	copy(e.coeffs, coeffs)
	return e
}

type node struct {
	fixed []int8
	// bound is the LP bound inherited from the parent, an upper bound on
	// any objective reachable in this subtree.
	bound float64
}

type search struct {
	m        *bnbModel
	objByVar []int64
	deadline time.Time

	mu      sync.Mutex
	cond    *sync.Cond
	stack   []*node
	idle    int
	workers int
	done    bool
	stopped bool
	failure error
	rng     *rand.Rand

	hasBest  bool
	best     int64
	bestVals []bool

	rootBound    float64
	haveRootLP   bool
	nodesVisited int64
}

func (m *bnbModel) Solve(ctx context.Context, params SolveParams) (Solution, error) {
	workers := params.Workers
	if workers < 1 {
		workers = 1
	}
	n := len(m.names)
	if n == 0 {
		// Degenerate model: constraints without variables must hold at zero.
		for _, e := range m.eqs {
			if e.bound != 0 {
				return Solution{Status: StatusInfeasible}, nil
			}
		}
		for _, e := range m.leqs {
			if e.bound < 0 {
				return Solution{Status: StatusInfeasible}, nil
			}
		}
		return Solution{Status: StatusOptimal}, nil
	}

	objByVar := make([]int64, n)
	for k, v := range m.obj.vars {
		objByVar[v] += m.obj.coeffs[k]
	}

	s := &search{
		m:        m,
		objByVar: objByVar,
		deadline: params.Deadline,
		workers:  workers,
		rng:      rand.New(rand.NewSource(params.Seed)),
	}
	s.cond = sync.NewCond(&s.mu)

	root := &node{fixed: make([]int8, n), bound: math.Inf(1)}
	for i := range root.fixed {
		root.fixed[i] = freeVal
	}
	s.stack = append(s.stack, root)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.run(ctx)
		}()
	}
	wg.Wait()

	if s.failure != nil {
		return Solution{Status: StatusUnknown, Nodes: s.nodesVisited}, s.failure
	}
	sol := Solution{Nodes: s.nodesVisited}
	switch {
	case s.hasBest && !s.stopped:
		sol.Status = StatusOptimal
		sol.Objective = s.best
		sol.Bound = s.best
		sol.values = s.bestVals
	case s.hasBest:
		sol.Status = StatusFeasible
		sol.Objective = s.best
		sol.Bound = s.globalBound()
		sol.values = s.bestVals
	case s.stopped:
		sol.Status = StatusUnknown
	default:
		sol.Status = StatusInfeasible
	}
	return sol, nil
}

func (s *search) globalBound() int64 {
	if !s.haveRootLP {
		return s.best
	}
	return int64(math.Floor(s.rootBound + intTol))
}

func (s *search) run(ctx context.Context) {
	for {
		nd := s.next()
		if nd == nil {
			return
		}
		if err := s.process(ctx, nd); err != nil {
			s.mu.Lock()
			if s.failure == nil {
				s.failure = err
			}
			s.done = true
			s.cond.Broadcast()
			s.mu.Unlock()
			return
		}
	}
}

// next pops a node, blocking until work is available or the search finishes.
func (s *search) next() *node {
	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		if s.done {
			return nil
		}
		if len(s.stack) > 0 {
			nd := s.stack[len(s.stack)-1]
			s.stack = s.stack[:len(s.stack)-1]
			return nd
		}
		s.idle++
		if s.idle == s.workers {
			s.done = true
			s.cond.Broadcast()
			return nil
		}
		s.cond.Wait()
		s.idle--
	}
}

func (s *search) expired(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	return !s.deadline.IsZero() && time.Now().After(s.deadline)
}

func (s *search) process(ctx context.Context, nd *node) error {
	if s.expired(ctx) {
		s.mu.Lock()
		s.stopped = true
		s.done = true
		s.cond.Broadcast()
		s.mu.Unlock()
		return nil
	}

	s.mu.Lock()
	s.nodesVisited++
	if s.hasBest && !math.IsInf(nd.bound, 1) &&
		int64(math.Floor(nd.bound+intTol)) <= s.best {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	n := len(nd.fixed)

	// Reduce constraints under the node's fixings.
	var fixedObj int64
	for i := 0; i < n; i++ {
		if nd.fixed[i] == 1 {
			fixedObj += s.objByVar[i]
		}
	}
	freeIdx := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if nd.fixed[i] == freeVal {
			freeIdx = append(freeIdx, i)
		}
	}
	col := make([]int, n)
	for i := range col {
		col[i] = -1
	}
	for j, i := range freeIdx {
		col[i] = j
	}

	type redRow struct {
		cols  []int
		coefs []float64
		rhs   float64
	}
	reduce := func(exprs []linExpr) []redRow {
		rows := make([]redRow, 0, len(exprs))
		for _, e := range exprs {
			rhs := float64(e.bound)
			var r redRow
			for k, v := range e.vars {
				switch nd.fixed[v] {
				case 1:
					rhs -= float64(e.coeffs[k])
				case freeVal:
					r.cols = append(r.cols, col[v])
					r.coefs = append(r.coefs, float64(e.coeffs[k]))
				}
			}
			r.rhs = rhs
			rows = append(rows, r)
		}
		return rows
	}

	leqRows := reduce(s.m.leqs)
	eqRows := reduce(s.m.eqs)
	for _, r := range leqRows {
		if len(r.cols) == 0 && r.rhs < -intTol {
			return nil // infeasible node
		}
	}
	for _, r := range eqRows {
		if len(r.cols) == 0 && math.Abs(r.rhs) > intTol {
			return nil
		}
	}

	nFree := len(freeIdx)
	if nFree == 0 {
		s.offerIncumbent(fixedObj, nd.fixed)
		return nil
	}

	// LP relaxation over the free variables: minimize -objective subject to
	// reduced constraints and the 0..1 box.
	c := make([]float64, nFree)
	for j, i := range freeIdx {
		c[j] = -float64(s.objByVar[i])
	}

	nLeq := 0
	for _, r := range leqRows {
		if len(r.cols) > 0 {
			nLeq++
		}
	}
	g := mat.NewDense(nLeq+2*nFree, nFree, nil)
	h := make([]float64, nLeq+2*nFree)
	row := 0
	for _, r := range leqRows {
		if len(r.cols) == 0 {
			continue
		}
		for k, cIdx := range r.cols {
			g.Set(row, cIdx, r.coefs[k])
		}
		h[row] = r.rhs
		row++
	}
	for j := 0; j < nFree; j++ {
		g.Set(row, j, 1)
		h[row] = 1
		row++
		g.Set(row, j, -1)
		h[row] = 0
		row++
	}

	var aMat mat.Matrix
	var bVec []float64
	nEq := 0
	for _, r := range eqRows {
		if len(r.cols) > 0 {
			nEq++
		}
	}
	if nEq > 0 {
		a := mat.NewDense(nEq, nFree, nil)
		bVec = make([]float64, nEq)
		row = 0
		for _, r := range eqRows {
			if len(r.cols) == 0 {
				continue
			}
			for k, cIdx := range r.cols {
				a.Set(row, cIdx, r.coefs[k])
			}
			bVec[row] = r.rhs
			row++
		}
		aMat = a
	}

	cStd, aStd, bStd := lp.Convert(c, g, h, aMat, bVec)
	opt, sol, err := lpSolve(cStd, aStd, bStd)
	if err != nil {
		if errors.Is(err, lp.ErrInfeasible) {
			return nil
		}
		return err
	}

	ub := float64(fixedObj) - opt
	s.mu.Lock()
	if math.IsInf(nd.bound, 1) && !s.haveRootLP {
		s.rootBound = ub
		s.haveRootLP = true
	}
	if s.hasBest && int64(math.Floor(ub+intTol)) <= s.best {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	// Recover original-space values: Convert splits x into positive and
	// negative parts ahead of the slack columns.
	x := make([]float64, nFree)
	for j := 0; j < nFree; j++ {
		x[j] = sol[j] - sol[nFree+j]
	}

	branch := -1
	worst := intTol
	for j := 0; j < nFree; j++ {
		frac := math.Abs(x[j] - math.Round(x[j]))
		if frac > worst+1e-9 {
			worst = frac
			branch = j
		}
	}
	if branch < 0 {
		// Integral vertex: a feasible assignment.
		vals := make([]int8, n)
		copy(vals, nd.fixed)
		var objective int64 = fixedObj
		for j, i := range freeIdx {
			if math.Round(x[j]) >= 1 {
				vals[i] = 1
				objective += s.objByVar[i]
			} else {
				vals[i] = 0
			}
		}
		s.offerIncumbent(objective, vals)
		return nil
	}

	varIdx := freeIdx[branch]
	up := &node{fixed: make([]int8, n), bound: ub}
	copy(up.fixed, nd.fixed)
	up.fixed[varIdx] = 1
	down := &node{fixed: make([]int8, n), bound: ub}
	copy(down.fixed, nd.fixed)
	down.fixed[varIdx] = 0

	s.mu.Lock()
	// The last pushed child is explored first. Explore the rounded
	// direction first; the seed breaks exact ties at 0.5.
	first, second := down, up
	if x[branch] > 0.5 || (x[branch] == 0.5 && s.rng.Intn(2) == 1) {
		first, second = up, down
	}
	s.stack = append(s.stack, second, first)
	s.cond.Broadcast()
	s.mu.Unlock()
	return nil
}

// offerIncumbent records a feasible assignment when it beats the best known.
func (s *search) offerIncumbent(objective int64, fixed []int8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hasBest && objective <= s.best {
		return
	}
	vals := make([]bool, len(fixed))
	for i, f := range fixed {
		vals[i] = f == 1
	}
	s.hasBest = true
	s.best = objective
	s.bestVals = vals
}

// lpSolve points to the simplex routine so tests can inject failures.
var lpSolve = func(c []float64, a *mat.Dense, b []float64) (float64, []float64, error) {
	return lp.Simplex(c, a, b, simplexTol, nil)
}
