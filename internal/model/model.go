// Package model orchestrates a corridor run: it owns the corridor, the agent
// population, the scheduler and the arrival schedule, and drives them one
// tick at a time until the configured iteration count is reached.
package model

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/dda-sim/dda/internal/agent"
	"github.com/dda-sim/dda/internal/arrival"
	"github.com/dda-sim/dda/internal/constants"
	"github.com/dda-sim/dda/internal/corridor"
	"github.com/dda-sim/dda/internal/logging"
	"github.com/dda-sim/dda/internal/recorder"
	"github.com/dda-sim/dda/internal/schedule"
)

var (
	// ErrInvalidPopulation is returned when the population size is not positive.
	ErrInvalidPopulation = errors.New("population size must be positive")

	// ErrInvalidIterations is returned when the iteration count is negative.
	ErrInvalidIterations = errors.New("iteration count must not be negative")

	// ErrInvalidBleedoutRate is returned when a bleedout rate lies outside [0, 1].
	ErrInvalidBleedoutRate = errors.New("bleedout rate must be within [0, 1]")

	// ErrInvalidOriginPolicy is returned for an unknown origin policy.
	ErrInvalidOriginPolicy = errors.New("unknown origin policy")

	// ErrRunAborted is returned by Run when a tick panicked. Observations
	// recorded before the failing tick are kept.
	ErrRunAborted = errors.New("run aborted")
)

// Config holds everything needed to build a Model.
type Config struct {
	// Agents is the fixed population size.
	Agents int

	// Iterations is the number of ticks to run.
	Iterations int

	// BleedoutRate is the midpoint exit probability. Nil draws one from
	// N(0.5, 0.1), clamped to [0, 1] by redrawing.
	BleedoutRate *float64

	// Seed seeds every random draw of the run. Nil picks a random seed,
	// which Model.Seed reports afterwards.
	Seed *uint64

	// Origins decides which endpoint each activated agent starts from.
	// Empty means alternate.
	Origins constants.OriginPolicy

	// Recorder receives one observation per tick. Nil records into an
	// in-memory history; recorder.Discard skips building observations.
	Recorder recorder.Recorder

	// Logger receives operational output. Nil discards it.
	Logger *slog.Logger

	// Events receives the structured event trace. Nil disables it.
	Events *logging.EventLog

	// RunID names the run in logs and stored observations. Empty generates
	// a UUID.
	RunID string
}

// Stats tallies agent lifecycle transitions over a run.
type Stats struct {
	Activations       int `json:"activations"`
	Completions       int `json:"completions"`
	Bleedouts         int `json:"bleedouts"`
	CappedActivations int `json:"capped_activations"`
}

// Model is a single simulation run. It is not safe for concurrent use.
type Model struct {
	runID      string
	seed       uint64
	iterations int
	rate       float64
	origins    constants.OriginPolicy
	nextOrigin agent.Direction
	running    bool

	rng      *rand.Rand
	grid     *corridor.Corridor
	sched    *schedule.RandomActivation[*agent.Agent]
	arrivals []int
	stats    Stats

	rec    recorder.Recorder
	logger *slog.Logger
	events *logging.EventLog
}

// New validates cfg and builds a running model with its whole population
// retired in the graveyard. On a validation error no agent is created.
func New(cfg Config) (*Model, error) {
	if cfg.Agents <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPopulation, cfg.Agents)
	}
	if cfg.Iterations < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidIterations, cfg.Iterations)
	}
	if cfg.BleedoutRate != nil {
		if err := validateRate(*cfg.BleedoutRate); err != nil {
			return nil, err
		}
	}
	origins := cfg.Origins
	if origins == "" {
		origins = constants.OriginAlternate
	}
	if !origins.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOriginPolicy, origins)
	}

	var seed uint64
	if cfg.Seed != nil {
		seed = *cfg.Seed
	} else {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	runID := cfg.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	m := &Model{
		runID:      runID,
		seed:       seed,
		iterations: cfg.Iterations,
		origins:    origins,
		nextOrigin: agent.TowardB,
		running:    true,
		rng:        rng,
		grid:       corridor.New(constants.CorridorWidth),
		sched:      schedule.NewRandomActivation[*agent.Agent](rng),
		arrivals:   arrival.Distribution(cfg.Agents),
		rec:        cfg.Recorder,
		logger:     cfg.Logger,
		events:     cfg.Events,
	}
	if m.rec == nil {
		m.rec = recorder.NewMemory()
	}
	if m.logger == nil {
		m.logger = logging.Discard()
	}

	if cfg.BleedoutRate != nil {
		m.rate = *cfg.BleedoutRate
	} else {
		m.rate = drawBleedoutRate(rng)
	}

	for id := 0; id < cfg.Agents; id++ {
		m.sched.Add(agent.New(id, m))
	}

	m.logger.Info("model created",
		"run_id", m.runID,
		"agents", cfg.Agents,
		"iterations", m.iterations,
		"bleedout_rate", m.rate,
		"seed", m.seed,
		"origins", string(m.origins))
	m.events.Log(logging.Event{
		Kind:  logging.EventRunStarted,
		RunID: m.runID,
		Attrs: map[string]any{
			"agents":        cfg.Agents,
			"iterations":    m.iterations,
			"bleedout_rate": m.rate,
			"seed":          m.seed,
		},
	})
	return m, nil
}

// drawBleedoutRate samples N(0.5, 0.1) until the draw lands in [0, 1].
func drawBleedoutRate(rng *rand.Rand) float64 {
	dist := distuv.Normal{
		Mu:    constants.DefaultBleedoutMean,
		Sigma: constants.DefaultBleedoutStdDev,
		Src:   rng,
	}
	for {
		if r := dist.Rand(); r >= 0 && r <= 1 {
			return r
		}
	}
}

func validateRate(r float64) error {
	// NaN fails both comparisons, so test for the valid range.
	if !(r >= 0 && r <= 1) {
		return fmt.Errorf("%w: got %v", ErrInvalidBleedoutRate, r)
	}
	return nil
}

// SetBleedoutRate changes the midpoint exit probability. An out-of-range
// rate is rejected and the current rate is left unchanged.
func (m *Model) SetBleedoutRate(r float64) error {
	if err := validateRate(r); err != nil {
		return err
	}
	m.rate = r
	return nil
}

// Step runs one tick: record, check termination, activate this tick's
// arrivals, then advance every agent. Nobody is activated at tick 0, so the
// hour-0 bucket first applies at tick 1440. Calling Step on a finished model
// does nothing.
func (m *Model) Step() error {
	if !m.running {
		return nil
	}

	tick := m.sched.Steps()
	if m.rec != recorder.Discard {
		if err := m.rec.Record(m.observe()); err != nil {
			return fmt.Errorf("recording tick %d: %w", tick, err)
		}
	}

	if tick >= m.iterations {
		m.finish()
		return nil
	}

	// Tick 0 is the opening snapshot; the first hourly batch arrives at tick 60.
	if tick > 0 {
		if n := arrival.ForTick(m.arrivals, tick); n > 0 {
			m.activate(tick, n)
		}
	}

	m.sched.Tick()
	m.logger.Log(context.Background(), logging.LevelTrace, "iteration",
		"tick", tick,
		"traveling", m.stats.Activations-m.stats.Completions-m.stats.Bleedouts)
	return nil
}

// Run steps the model until it finishes. A panic inside a tick stops the run
// and is reported as ErrRunAborted.
func (m *Model) Run() error {
	return m.RunContext(context.Background())
}

// RunContext is Run with cancellation checked between ticks. A tick that
// has started always completes.
func (m *Model) RunContext(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			m.abort(fmt.Sprint(r))
			err = fmt.Errorf("%w at tick %d: %v", ErrRunAborted, m.sched.Steps(), r)
		}
	}()

	for m.running {
		if err := ctx.Err(); err != nil {
			m.abort(err.Error())
			return fmt.Errorf("%w at tick %d: %w", ErrRunAborted, m.sched.Steps(), err)
		}
		if err := m.Step(); err != nil {
			return err
		}
	}
	return nil
}

func (m *Model) abort(reason string) {
	m.running = false
	m.logger.Error("run aborted", "run_id", m.runID, "tick", m.sched.Steps(), "reason", reason)
	m.events.Log(logging.Event{
		Kind:  logging.EventRunAborted,
		RunID: m.runID,
		Tick:  m.sched.Steps(),
		Attrs: map[string]any{"reason": reason},
	})
}

func (m *Model) finish() {
	m.running = false
	m.logger.Info("run finished",
		"run_id", m.runID,
		"steps", m.sched.Steps(),
		"activations", m.stats.Activations,
		"completions", m.stats.Completions,
		"bleedouts", m.stats.Bleedouts)
	m.events.Log(logging.Event{
		Kind:  logging.EventRunFinished,
		RunID: m.runID,
		Tick:  m.sched.Steps(),
		Attrs: map[string]any{
			"activations":        m.stats.Activations,
			"completions":        m.stats.Completions,
			"bleedouts":          m.stats.Bleedouts,
			"capped_activations": m.stats.CappedActivations,
		},
	})
}

func (m *Model) observe() recorder.Observation {
	agents := m.sched.Agents()
	obs := recorder.Observation{
		Tick:         m.sched.Steps(),
		BleedoutRate: m.rate,
		Agents:       make([]recorder.AgentObservation, len(agents)),
	}
	for i, a := range agents {
		obs.Agents[i] = recorder.AgentObservation{
			ID:       a.ID(),
			Position: a.Pos(),
			State:    a.State(),
		}
	}
	return obs
}

// activate picks up to n retired agents uniformly without replacement and
// puts them on the street.
func (m *Model) activate(tick, n int) {
	var pool []*agent.Agent
	for _, a := range m.sched.Agents() {
		if a.State() == agent.StateRetired {
			pool = append(pool, a)
		}
	}

	k := min(n, len(pool))
	if k < n {
		m.stats.CappedActivations++
		m.logger.Warn("activation capped",
			"tick", tick, "requested", n, "available", len(pool))
	}

	// Partial Fisher-Yates: the first k slots end up a uniform sample.
	for i := 0; i < k; i++ {
		j := i + m.rng.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
		dir := m.origin()
		pool[i].Activate(dir)
		m.stats.Activations++
		m.logger.Debug("agent activated", "tick", tick, "agent", pool[i].ID(), "direction", string(dir))
	}

	m.events.Log(logging.Event{
		Kind:  logging.EventActivation,
		RunID: m.runID,
		Tick:  tick,
		Attrs: map[string]any{
			"requested": n,
			"available": len(pool),
			"activated": k,
		},
	})
}

func (m *Model) origin() agent.Direction {
	if m.origins == constants.OriginRandom {
		if m.rng.IntN(2) == 0 {
			return agent.TowardB
		}
		return agent.TowardA
	}
	dir := m.nextOrigin
	if dir == agent.TowardB {
		m.nextOrigin = agent.TowardA
	} else {
		m.nextOrigin = agent.TowardB
	}
	return dir
}
