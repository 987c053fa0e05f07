package rational

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestFactorizeSmall(t *testing.T) {
	assert.Equal(t, []int64{2, 3}, Factorize(12))
	assert.Equal(t, []int64{2}, Factorize(1024))
	assert.Equal(t, []int64{7}, Factorize(49))
	assert.Equal(t, []int64{997}, Factorize(997))
}

func TestFactorizeLarge(t *testing.T) {
	// 1009 * 1013 is just above the trial-division cutover and exercises
	// Pollard's rho.
	got := Factorize(1009 * 1013)
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	assert.Equal(t, []int64{1009, 1013}, got)
}

func isFactorOf(n int64, primes []int64) bool {
	for _, p := range Factorize(n) {
		found := false
		for _, q := range primes {
			if p == q {
				found = true
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Property 6: factor_splitting(n, primes(n), L, R) yields every
// factorisation of n into two bounded factors, each exactly once.
func TestFactorSplittingExhaustiveExactlyOnce(t *testing.T) {
	rapid.Check(t, func(tt *rapid.T) {
		n := rapid.Int64Range(1, 5000).Draw(tt, "n")
		primes := Factorize(n)
		maxL := rapid.Int64Range(1, n).Draw(tt, "maxL")
		maxR := rapid.Int64Range(1, n).Draw(tt, "maxR")

		want := map[FactorSplit]int{}
		for l := int64(1); l <= n; l++ {
			if n%l != 0 {
				continue
			}
			r := n / l
			if l <= maxL && r <= maxR {
				want[FactorSplit{l, r}]++
			}
		}

		got := map[FactorSplit]int{}
		FactorSplitting(n, primes, maxL, maxR, func(fs FactorSplit) bool {
			got[fs]++
			return true
		})

		assert.Equal(tt, want, got)
	})
}

func TestFactorSplittingEarlyStop(t *testing.T) {
	n := int64(2 * 2 * 3 * 3)
	primes := Factorize(n)
	count := 0
	FactorSplitting(n, primes, n, n, func(fs FactorSplit) bool {
		count++
		return count < 2
	})
	assert.Equal(t, 2, count)
}
