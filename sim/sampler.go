package sim

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// SampleDuration draws one duration (in milliseconds) from dist using
// rng. fixed returns its value exactly; normal floors at params["min"]
// (default 0); lognormal exponentiates a gaussian draw. Unknown variants
// are a programmer error: Validate should have already excluded them.
func SampleDuration(rng *rand.Rand, dist DurationDist) (float64, error) {
	switch dist.Dist {
	case DistFixed:
		return dist.Params["value"], nil
	case DistNormal:
		mean := dist.Params["mean"]
		std := dist.Params["std"]
		min := dist.Params["min"] // zero value if absent
		n := distuv.Normal{Mu: mean, Sigma: std, Src: rng}
		return math.Max(min, n.Rand()), nil
	case DistLognormal:
		mu := dist.Params["mu"]
		sigma := dist.Params["sigma"]
		ln := distuv.LogNormal{Mu: mu, Sigma: sigma, Src: rng}
		return ln.Rand(), nil
	default:
		return 0, newInternalError("unhandled dist: %s", dist.Dist)
	}
}
