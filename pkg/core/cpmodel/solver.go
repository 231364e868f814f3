package cpmodel

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mlavelle/wardroster/pkg/core/model"
)

// ErrSchedulingFailed is returned when no feasible assignment exists within
// the solver's time budget. No partial result is produced.
var ErrSchedulingFailed = errors.New("scheduling failed: no feasible assignment within budget")

// maxWorkedPerWindow caps assigned shifts in any 7 consecutive days
const maxWorkedPerWindow = 6

const windowLen = 7

// Solver finds an assignment for a built problem. Implementations are pure:
// the same problem and budget always explore the same search space.
type Solver interface {
	Solve(ctx context.Context, prob *Problem) (*model.Grid, error)
}

// CPSolver is a branch-and-bound searcher over the decision cells. It runs
// Workers parallel searches with distinct value orderings under a shared
// wall-clock budget and keeps the best-scoring feasible assignment.
type CPSolver struct {
	Workers   int
	TimeLimit time.Duration
}

// NewSolver creates a solver with the given parallelism and time budget
func NewSolver(workers int, timeLimit time.Duration) *CPSolver {
	if workers < 1 {
		workers = 1
	}
	return &CPSolver{Workers: workers, TimeLimit: timeLimit}
}

// Solve runs the search and returns a full proposed grid, or
// ErrSchedulingFailed if no worker found a feasible assignment in time.
func (s *CPSolver) Solve(ctx context.Context, prob *Problem) (*model.Grid, error) {
	if s.TimeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.TimeLimit)
		defer cancel()
	}

	results := make([]searchResult, s.Workers)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < s.Workers; i++ {
		i := i
		g.Go(func() error {
			results[i] = runSearch(gctx, prob, int64(i))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	best := -1
	bestIdx := -1
	for i, res := range results {
		if res.found && res.score > best {
			best = res.score
			bestIdx = i
		}
	}
	if bestIdx < 0 {
		return nil, ErrSchedulingFailed
	}

	return prob.gridFrom(results[bestIdx].assignment), nil
}

type searchResult struct {
	found      bool
	score      int
	assignment []string
}

// search carries the mutable state of one worker's depth-first search
type search struct {
	prob *Problem
	rng  *rand.Rand

	// worked[name][day] tracks assignments, seeded with locked history
	worked map[string][]bool

	// bonusAt maps employee/day to the token weight lost if they work it
	bonusAt map[string]map[int]int

	// remainingOff is the optimistic total of not-yet-violated off bonuses
	remainingOff int

	// suffixHints[i] is the number of hint-carrying cells at index >= i
	suffixHints []int

	assignment []string
	hintsWon   int

	best      searchResult
	nodeCount int
	stopped   bool
}

func runSearch(ctx context.Context, prob *Problem, seed int64) searchResult {
	s := &search{
		prob:       prob,
		rng:        rand.New(rand.NewSource(seed)),
		worked:     make(map[string][]bool),
		bonusAt:    make(map[string]map[int]int),
		assignment: make([]string, len(prob.cells)),
		best:       searchResult{score: -1},
	}

	for _, b := range prob.bonuses {
		if s.bonusAt[b.employee] == nil {
			s.bonusAt[b.employee] = make(map[int]int)
		}
		s.bonusAt[b.employee][b.day] += b.tokens
		s.remainingOff += b.tokens
	}

	for _, lc := range prob.locked {
		if !prob.roster[lc.employee] {
			continue
		}
		s.markWorked(lc.employee, lc.day)
		s.remainingOff -= s.bonusLoss(lc.employee, lc.day)
	}

	s.suffixHints = make([]int, len(prob.cells)+1)
	for i := len(prob.cells) - 1; i >= 0; i-- {
		s.suffixHints[i] = s.suffixHints[i+1]
		if prob.cells[i].hint != "" {
			s.suffixHints[i]++
		}
	}

	s.dfs(ctx, 0)

	if s.best.found {
		return s.best
	}
	return searchResult{}
}

func (s *search) dfs(ctx context.Context, idx int) {
	if s.stopped {
		return
	}
	s.nodeCount++
	if s.nodeCount%256 == 0 && ctx.Err() != nil {
		s.stopped = true
		return
	}

	if idx == len(s.prob.cells) {
		score := s.hintsWon + s.remainingOff
		if score > s.best.score {
			s.best = searchResult{
				found:      true,
				score:      score,
				assignment: append([]string(nil), s.assignment...),
			}
		}
		return
	}

	// Optimistic bound: every remaining hint earned, no more bonuses lost
	if s.hintsWon+s.suffixHints[idx]+s.remainingOff <= s.best.score {
		return
	}

	cell := s.prob.cells[idx]
	for _, emp := range s.orderCandidates(cell) {
		if !s.canWork(emp, cell.day) {
			continue
		}

		s.markWorked(emp, cell.day)
		loss := s.bonusLoss(emp, cell.day)
		s.remainingOff -= loss
		hinted := 0
		if emp == cell.hint {
			hinted = 1
		}
		s.hintsWon += hinted
		s.assignment[idx] = emp

		s.dfs(ctx, idx+1)

		s.assignment[idx] = ""
		s.hintsWon -= hinted
		s.remainingOff += loss
		s.unmarkWorked(emp, cell.day)

		if s.stopped {
			return
		}
	}
}

// orderCandidates prefers the official-schedule hint, then employees whose
// assignment would not cost any off-request bonus. Workers beyond the first
// shuffle within those tiers to diversify the searches.
func (s *search) orderCandidates(cell decisionCell) []string {
	free := make([]string, 0, len(cell.candidates))
	costly := make([]string, 0)
	for _, emp := range cell.candidates {
		if emp == cell.hint {
			continue
		}
		if s.bonusLoss(emp, cell.day) > 0 {
			costly = append(costly, emp)
		} else {
			free = append(free, emp)
		}
	}
	s.rng.Shuffle(len(free), func(i, j int) { free[i], free[j] = free[j], free[i] })
	s.rng.Shuffle(len(costly), func(i, j int) { costly[i], costly[j] = costly[j], costly[i] })

	ordered := make([]string, 0, len(cell.candidates))
	if cell.hint != "" {
		ordered = append(ordered, cell.hint)
	}
	ordered = append(ordered, free...)
	ordered = append(ordered, costly...)
	return ordered
}

func (s *search) bonusLoss(emp string, day int) int {
	return s.bonusAt[emp][day]
}

// canWork enforces the at-most-one-shift-per-day rule and, for everyone but
// the exempt employee, the <=6 worked days per rolling 7-day window cap.
func (s *search) canWork(emp string, day int) bool {
	days := s.worked[emp]
	if days != nil && days[day] {
		return false
	}
	if emp == s.prob.exempt {
		return true
	}
	if days == nil {
		return true
	}

	lo := day - (windowLen - 1)
	if lo < 0 {
		lo = 0
	}
	hi := day
	if hi > s.prob.days-windowLen {
		hi = s.prob.days - windowLen
	}
	for start := lo; start <= hi; start++ {
		count := 1 // the assignment under consideration
		for d := start; d < start+windowLen; d++ {
			if days[d] {
				count++
			}
		}
		if count > maxWorkedPerWindow {
			return false
		}
	}
	return true
}

func (s *search) markWorked(emp string, day int) {
	days := s.worked[emp]
	if days == nil {
		days = make([]bool, s.prob.days)
		s.worked[emp] = days
	}
	days[day] = true
}

func (s *search) unmarkWorked(emp string, day int) {
	s.worked[emp][day] = false
}

// gridFrom assembles the full proposed grid: locked history first, then the
// searched decision cells.
func (p *Problem) gridFrom(assignment []string) *model.Grid {
	shiftIDs := make([]string, len(p.shifts))
	for i, shift := range p.shifts {
		shiftIDs[i] = shift.ID
	}
	grid := model.NewGrid(shiftIDs, p.days)

	for _, lc := range p.locked {
		grid.Set(lc.shiftID, lc.day, lc.employee)
	}
	for i, cell := range p.cells {
		grid.Set(cell.shiftID, cell.day, assignment[i])
	}
	return grid
}
