package app

import (
	"math"

	"qrate/internal/domain"
)

const (
	minBucket = 1
	maxBucket = 5
)

// Compute derives the statistics of one entity from its raw reviews.
// Only reviews with a positive overall rating contribute to the count,
// means and distribution. It is pure: the same input always yields the
// same output, and nothing is retained between calls.
func Compute(kind domain.EntityKind, key string, reviews []domain.Review) domain.AggregateStat {
	dims := kind.Dimensions()
	sums := make(map[string]float64, len(dims))
	st := domain.AggregateStat{EntityKey: key, Distribution: emptyDistribution()}

	for _, r := range reviews {
		overall := r.Overall()
		if overall <= 0 {
			continue
		}
		st.Count++
		for _, d := range dims {
			sums[d] += float64(r.Ratings[d])
		}
		b := int(math.Round(float64(overall)))
		if b < minBucket || b > maxBucket {
			st.Clamped++
			b = clamp(b)
		}
		st.Distribution[b]++
	}
	st.Means = means(dims, sums, st.Count)
	return st
}

// Summarize builds the same statistics from the store's grouped reducer
// output. The distribution is not derivable from sums and stays zero-filled.
func Summarize(kind domain.EntityKind, key string, g domain.RatingGroup) domain.AggregateStat {
	dims := kind.Dimensions()
	return domain.AggregateStat{
		EntityKey:    key,
		Count:        g.Count,
		Means:        means(dims, g.Sums, g.Count),
		Distribution: emptyDistribution(),
	}
}

func means(dims []string, sums map[string]float64, n int) map[string]domain.Mean {
	out := make(map[string]domain.Mean, len(dims))
	for _, d := range dims {
		out[d] = domain.NewMean(sums[d], n)
	}
	return out
}

func emptyDistribution() map[int]int {
	d := make(map[int]int, maxBucket)
	for b := minBucket; b <= maxBucket; b++ {
		d[b] = 0
	}
	return d
}

func clamp(b int) int {
	if b < minBucket {
		return minBucket
	}
	if b > maxBucket {
		return maxBucket
	}
	return b
}
