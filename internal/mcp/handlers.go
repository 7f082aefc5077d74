package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dda-sim/dda/internal/arrival"
	"github.com/dda-sim/dda/internal/constants"
	"github.com/dda-sim/dda/internal/model"
	"github.com/dda-sim/dda/internal/ratelimit"
	"github.com/dda-sim/dda/internal/recorder"
)

// Upper bounds on tool-driven runs. A full day for a large town is well
// inside these.
const (
	MaxAgents     = 100_000
	MaxIterations = 7 * constants.HoursPerDay * constants.TicksPerHour
)

// ErrTooLarge is returned when a tool call asks for a run past the limits.
var ErrTooLarge = errors.New("requested run is too large")

// registerTools registers all dda MCP tools with the server.
func (s *Server) registerTools() {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "dda_simulate",
		Description: "Run a corridor simulation and return lifecycle tallies, final state counts and corridor occupancy",
	}, s.handleSimulate)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "dda_arrivals",
		Description: "Show how many agents activate at the start of each hour for a population size",
	}, s.handleArrivals)
}

func (s *Server) handleSimulate(ctx context.Context, req *sdk.CallToolRequest, args SimulateInput) (_ *sdk.CallToolResult, _ SimulateOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("dda_simulate", start, retErr, sanitizeToolParams(map[string]interface{}{
			"agents":        args.Agents,
			"iterations":    args.Iterations,
			"bleedout_rate": args.BleedoutRate,
			"seed":          args.Seed,
			"origin_policy": args.OriginPolicy,
		}))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "dda_simulate"); err != nil {
		return nil, SimulateOutput{}, err
	}
	if args.Agents > MaxAgents {
		return nil, SimulateOutput{}, fmt.Errorf("%w: agents %d exceeds %d", ErrTooLarge, args.Agents, MaxAgents)
	}
	if args.Iterations > MaxIterations {
		return nil, SimulateOutput{}, fmt.Errorf("%w: iterations %d exceeds %d", ErrTooLarge, args.Iterations, MaxIterations)
	}

	m, err := s.newSimulation(args)
	if err != nil {
		return nil, SimulateOutput{}, err
	}

	if err := m.RunContext(ctx); err != nil {
		return nil, SimulateOutput{}, fmt.Errorf("simulation failed: %w", err)
	}

	summary := m.Summary()
	msg := fmt.Sprintf("Ran %d agents for %d ticks at bleedout rate %.3f: %d activations, %d completions, %d bleedouts",
		summary.Agents, summary.Steps, summary.BleedoutRate,
		summary.Stats.Activations, summary.Stats.Completions, summary.Stats.Bleedouts)
	return nil, SimulateOutput{Run: summary, Message: msg}, nil
}

// newSimulation builds the model for a dda_simulate call. Only the summary is
// returned to the client, so no per-tick history is kept.
func (s *Server) newSimulation(args SimulateInput) (*model.Model, error) {
	m, err := model.New(model.Config{
		Agents:       args.Agents,
		Iterations:   args.Iterations,
		BleedoutRate: args.BleedoutRate,
		Seed:         args.Seed,
		Origins:      constants.OriginPolicy(args.OriginPolicy),
		Recorder:     recorder.Discard,
		Logger:       s.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("invalid simulation parameters: %w", err)
	}
	return m, nil
}

func (s *Server) handleArrivals(ctx context.Context, req *sdk.CallToolRequest, args ArrivalsInput) (_ *sdk.CallToolResult, _ ArrivalsOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("dda_arrivals", start, retErr, sanitizeToolParams(map[string]interface{}{
			"agents": args.Agents,
		}))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "dda_arrivals"); err != nil {
		return nil, ArrivalsOutput{}, err
	}
	if args.Agents > MaxAgents {
		return nil, ArrivalsOutput{}, fmt.Errorf("%w: agents %d exceeds %d", ErrTooLarge, args.Agents, MaxAgents)
	}

	buckets := arrival.Distribution(args.Agents)
	return nil, ArrivalsOutput{
		Buckets: buckets,
		Total:   arrival.Total(buckets),
	}, nil
}
