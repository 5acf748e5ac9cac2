package analytics

import (
	"math"
	"math/rand"
)

// poissonSample draws from Poisson(lambda): inverse transform sampling for
// small lambda, normal approximation above. Weekly FPL scores put lambda well
// past the small branch, but team strength can be tiny early in a season.
func poissonSample(rng *rand.Rand, lambda float64) int {
	if lambda <= 0 {
		return 0
	}

	if lambda < 12 {
		l := math.Exp(-lambda)
		k := 0
		p := 1.0
		for p > l {
			k++
			p *= rng.Float64()
		}
		return k - 1
	}

	return int(math.Max(0, rng.NormFloat64()*math.Sqrt(lambda)+lambda+0.5))
}
