// Package constants provides the fixed geometry and schedule constants of the
// corridor simulation. None of these are configurable.
package constants

// Corridor geometry. The corridor is a single row of cells indexed from 0.
const (
	// CorridorWidth is the number of cells in the corridor.
	CorridorWidth = 24

	// Graveyard is the holding cell for retired agents.
	Graveyard = 0

	// LocA is the left endpoint of the street.
	LocA = 1

	// LocMid is the midpoint checkpoint where bleedout is decided.
	LocMid = 12

	// LocB is the right endpoint of the street.
	LocB = 23
)

// Clock constants. One tick is one minute of simulated time.
const (
	// TicksPerHour is the number of ticks between arrival buckets.
	TicksPerHour = 60

	// HoursPerDay is the number of buckets in the arrival distribution.
	HoursPerDay = 24
)

// Arrival distribution shape: a normal density peaking at noon.
const (
	ArrivalMean   = 12.0
	ArrivalStdDev = 6.0
)

// Default bleedout rate distribution, used when no rate is configured.
const (
	DefaultBleedoutMean   = 0.5
	DefaultBleedoutStdDev = 0.1
)

// Defaults used by the CLI and config when nothing else is set.
const (
	// DefaultAgents matches the population used in the original experiments.
	DefaultAgents = 600

	// DefaultIterations is one thousand ticks, a little over sixteen hours.
	DefaultIterations = 1000
)
