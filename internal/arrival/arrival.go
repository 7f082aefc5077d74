// Package arrival builds the hour-of-day arrival schedule that drives agent
// activation.
//
// The schedule is a normal density centred on noon, evaluated at each whole
// hour and shared out across the population. It is computed once per model
// and never changes afterwards.
package arrival

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/dda-sim/dda/internal/constants"
)

// Distribution returns the expected number of arrivals for each of the 24
// hourly buckets of a population of n agents.
//
// Bucket h is proportional to the N(12, 6) density at hour h. The densities
// are normalised over the day so the whole population is shared out, then each
// bucket is rounded half-to-even. The normalisation is deliberate: the raw
// whole-hour densities cover only about 95% of the mass, which would leave a
// large population short by far more than rounding. Rounding means the total
// may differ from n by up to one agent per bucket; the difference is not
// corrected. A non-positive n yields 24 zero buckets.
func Distribution(n int) []int {
	dist := make([]int, constants.HoursPerDay)
	if n <= 0 {
		return dist
	}

	weights := Weights()
	for h, w := range weights {
		dist[h] = int(math.RoundToEven(w * float64(n)))
	}
	return dist
}

// Weights returns the normalised hourly shares that Distribution scales by
// the population size. The shares sum to 1.
func Weights() []float64 {
	norm := distuv.Normal{Mu: constants.ArrivalMean, Sigma: constants.ArrivalStdDev}

	weights := make([]float64, constants.HoursPerDay)
	total := 0.0
	for h := range weights {
		weights[h] = norm.Prob(float64(h))
		total += weights[h]
	}
	for h := range weights {
		weights[h] /= total
	}
	return weights
}

// ForTick returns how many agents should be activated at the given tick.
// Only ticks that fall exactly on the hour activate anyone; they use the
// bucket for that hour of the day, wrapping after 24 hours.
func ForTick(dist []int, tick int) int {
	if tick < 0 || tick%constants.TicksPerHour != 0 || len(dist) == 0 {
		return 0
	}
	hour := (tick / constants.TicksPerHour) % len(dist)
	return dist[hour]
}

// Total sums a distribution.
func Total(dist []int) int {
	sum := 0
	for _, v := range dist {
		sum += v
	}
	return sum
}
