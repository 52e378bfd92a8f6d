// Package schedule provides weighted-random task selection for agents.
package schedule

import (
	"errors"
	"math/rand"
	"sort"
)

// ErrNoEligibleTask is returned by Select when every candidate weight is
// zero. The caller skips the cycle; it is not a fatal condition.
var ErrNoEligibleTask = errors.New("no eligible task")

// Weighted is one selectable task with its relative weight. Weights must be
// >= 0; negative weights are treated as 0.
type Weighted struct {
	Name   string
	Weight int
}

// Scheduler selects task names with probability proportional to their
// weights. It is stateless after construction and safe for concurrent use;
// callers pass their own random source so agents never contend on shared RNG
// state and runs are reproducible under a fixed seed.
type Scheduler struct {
	names []string
	cum   []int
	total int
}

// New builds a Scheduler from the given weighted tasks. The cumulative
// weight table is built once here so Select stays allocation-free.
func New(items []Weighted) *Scheduler {
	s := &Scheduler{
		names: make([]string, 0, len(items)),
		cum:   make([]int, 0, len(items)),
	}
	for _, it := range items {
		w := it.Weight
		if w < 0 {
			w = 0
		}
		s.total += w
		s.names = append(s.names, it.Name)
		s.cum = append(s.cum, s.total)
	}
	return s
}

// Total returns the sum of all weights.
func (s *Scheduler) Total() int { return s.total }

// Select returns one task name such that P(task i) = weight_i / total.
// Returns ErrNoEligibleTask when the weight sum is zero.
func (s *Scheduler) Select(r *rand.Rand) (string, error) {
	if s.total == 0 {
		return "", ErrNoEligibleTask
	}
	n := r.Intn(s.total)
	i := sort.SearchInts(s.cum, n+1)
	return s.names[i], nil
}
