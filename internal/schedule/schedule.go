// Package schedule provides the random-activation scheduler that advances
// every agent once per tick.
package schedule

import "math/rand/v2"

// Stepper is anything the scheduler can advance by one tick.
type Stepper interface {
	Advance()
}

// RandomActivation advances its agents once per tick in a freshly shuffled
// order. Each tick draws a new permutation, independent of earlier ticks, so
// no agent is systematically advanced before another.
type RandomActivation[A Stepper] struct {
	agents []A
	order  []int
	steps  int
	rng    *rand.Rand
}

// NewRandomActivation creates an empty scheduler drawing its permutations
// from rng.
func NewRandomActivation[A Stepper](rng *rand.Rand) *RandomActivation[A] {
	return &RandomActivation[A]{rng: rng}
}

// Add appends an agent to the schedule.
func (s *RandomActivation[A]) Add(a A) {
	s.agents = append(s.agents, a)
	s.order = append(s.order, len(s.order))
}

// Agents returns the scheduled agents in insertion order. The slice is shared
// with the scheduler and must not be modified.
func (s *RandomActivation[A]) Agents() []A {
	return s.agents
}

// Len returns the number of scheduled agents.
func (s *RandomActivation[A]) Len() int {
	return len(s.agents)
}

// Steps returns the number of completed ticks.
func (s *RandomActivation[A]) Steps() int {
	return s.steps
}

// Tick increments the tick counter and advances every agent once, in a
// uniformly random order.
func (s *RandomActivation[A]) Tick() {
	s.steps++
	s.rng.Shuffle(len(s.order), func(i, j int) {
		s.order[i], s.order[j] = s.order[j], s.order[i]
	})
	for _, idx := range s.order {
		s.agents[idx].Advance()
	}
}
