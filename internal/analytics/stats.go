package analytics

import (
	"math"
	"sort"
)

// Small statistical helpers shared by the analysis modules. All pure.

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func medianInt(xs []int) int {
	if len(xs) == 0 {
		return 0
	}
	sorted := make([]int, len(xs))
	copy(sorted, xs)
	sort.Ints(sorted)
	return sorted[len(sorted)/2]
}

// olsSlope fits an ordinary least-squares line through (i, ys[i]) and returns
// its slope. Fewer than two points have no slope.
func olsSlope(ys []float64) float64 {
	n := float64(len(ys))
	if n < 2 {
		return 0
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range ys {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// decayWeight is the exponential recency weight for a review ageDays old.
func decayWeight(ageDays, halfLifeDays float64) float64 {
	if halfLifeDays <= 0 {
		return 1
	}
	return math.Exp2(-ageDays / halfLifeDays)
}

// nearestRankPercentile ranks v within population by the nearest-rank method:
// the share of values less than or equal to v, as a percentage.
func nearestRankPercentile(population []float64, v float64) float64 {
	if len(population) == 0 {
		return 0
	}
	rank := 0
	for _, p := range population {
		if p <= v {
			rank++
		}
	}
	return float64(rank) / float64(len(population)) * 100
}
