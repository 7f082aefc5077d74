package mcp

import (
	"github.com/dda-sim/dda/internal/model"
)

// SimulateInput defines the input for the dda_simulate tool.
type SimulateInput struct {
	Agents       int      `json:"agents" jsonschema:"Population size (positive)"`
	Iterations   int      `json:"iterations" jsonschema:"Number of ticks to run (60 ticks per simulated hour)"`
	BleedoutRate *float64 `json:"bleedout_rate,omitempty" jsonschema:"Midpoint exit probability in [0,1]; omitted draws one from N(0.5, 0.1)"`
	Seed         *uint64  `json:"seed,omitempty" jsonschema:"Random seed for a reproducible run; omitted picks one"`
	OriginPolicy string   `json:"origin_policy,omitempty" jsonschema:"How activated agents pick an endpoint: alternate (default) or random"`
}

// SimulateOutput defines the output for the dda_simulate tool.
type SimulateOutput struct {
	Run     model.Summary `json:"run" jsonschema:"Run summary, the same object dda run --json prints"`
	Message string        `json:"message" jsonschema:"Human-readable result message"`
}

// ArrivalsInput defines the input for the dda_arrivals tool.
type ArrivalsInput struct {
	Agents int `json:"agents" jsonschema:"Population size to share out across the day"`
}

// ArrivalsOutput defines the output for the dda_arrivals tool.
type ArrivalsOutput struct {
	Buckets []int `json:"buckets" jsonschema:"Agents activated at the start of each hour 0-23"`
	Total   int   `json:"total" jsonschema:"Sum of all buckets (may differ slightly from agents due to rounding)"`
}
