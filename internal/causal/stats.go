package causal

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

const (
	lowerQuantile = 0.025
	upperQuantile = 0.975
)

// Interval is a point estimate with a 95% interval. Lo <= Mean <= Hi holds
// for every Interval this package returns.
type Interval struct {
	Mean float64
	Lo   float64
	Hi   float64
}

// percentileInterval reports the linear-interpolated 2.5th and 97.5th
// percentiles of draws around point.
func percentileInterval(point float64, draws []float64) Interval {
	sorted := make([]float64, len(draws))
	copy(sorted, draws)
	sort.Float64s(sorted)
	lo := stat.Quantile(lowerQuantile, stat.LinInterp, sorted, nil)
	hi := stat.Quantile(upperQuantile, stat.LinInterp, sorted, nil)
	return covering(point, lo, hi)
}

// covering orders lo/hi and stretches them to include point.
func covering(point, lo, hi float64) Interval {
	if lo > hi {
		lo, hi = hi, lo
	}
	return Interval{Mean: point, Lo: math.Min(lo, point), Hi: math.Max(hi, point)}
}

// productBounds is the range of a*b over a in [aLo, aHi], b in [bLo, bHi].
func productBounds(aLo, aHi, bLo, bHi float64) (float64, float64) {
	c := [...]float64{aLo * bLo, aLo * bHi, aHi * bLo, aHi * bHi}
	lo, hi := c[0], c[0]
	for _, v := range c[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}
