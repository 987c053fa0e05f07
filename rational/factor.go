package rational

import "math/big"

// smallPrimes is the same quick-reject sieve table as the original
// Python's numbers.SMALL_PRIMES: every prime below 1000.
var smallPrimes = []int64{
	2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41, 43, 47, 53, 59, 61, 67, 71,
	73, 79, 83, 89, 97, 101, 103, 107, 109, 113, 127, 131, 137, 139, 149, 151,
	157, 163, 167, 173, 179, 181, 191, 193, 197, 199, 211, 223, 227, 229, 233,
	239, 241, 251, 257, 263, 269, 271, 277, 281, 283, 293, 307, 311, 313, 317,
	331, 337, 347, 349, 353, 359, 367, 373, 379, 383, 389, 397, 401, 409, 419,
	421, 431, 433, 439, 443, 449, 457, 461, 463, 467, 479, 487, 491, 499, 503,
	509, 521, 523, 541, 547, 557, 563, 569, 571, 577, 587, 593, 599, 601, 607,
	613, 617, 619, 631, 641, 643, 647, 653, 659, 661, 673, 677, 683, 691, 701,
	709, 719, 727, 733, 739, 743, 751, 757, 761, 769, 773, 787, 797, 809, 811,
	821, 823, 827, 829, 839, 853, 857, 859, 863, 877, 881, 883, 887, 907, 911,
	919, 929, 937, 941, 947, 953, 967, 971, 977, 983, 991, 997,
}

// smallFactorLimit is 1009^2: below this, trial division by smallPrimes
// alone is enough to fully factor a number.
const smallFactorLimit = 1009 * 1009

// Factorize returns the sorted distinct prime factors of n. n must be
// positive. Small n is handled by trial division; larger cofactors are
// split with Pollard's rho, guarded by a Miller-Rabin primality check.
func Factorize(n int64) []int64 {
	if n <= 0 {
		panic("rational: Factorize requires n > 0")
	}
	var factors []int64
	for _, p := range smallPrimes {
		if n%p == 0 {
			factors = append(factors, p)
			for n%p == 0 {
				n /= p
			}
		}
		if n < p*p {
			break
		}
	}
	if n >= smallFactorLimit {
		set := map[int64]struct{}{}
		for _, f := range factors {
			set[f] = struct{}{}
		}
		largeFactors(set, n)
		factors = factors[:0]
		for f := range set {
			factors = append(factors, f)
		}
		sortInt64s(factors)
	} else if n > 1 {
		factors = append(factors, n)
	}
	return factors
}

func sortInt64s(s []int64) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

func largeFactors(factors map[int64]struct{}, n int64) {
	for n >= smallFactorLimit {
		if millerRabin(n) {
			factors[n] = struct{}{}
			return
		}
		factor := pollardRho(n)
		if factor >= smallFactorLimit {
			largeFactors(factors, factor)
		} else {
			factors[factor] = struct{}{}
		}
		n /= factor
	}
	if n > 1 {
		factors[n] = struct{}{}
	}
}

// pollardRho finds a non-trivial factor of n using Pollard rho with
// Brent-style (power-of-two) cycle detection, trying each of the small primes as the polynomial's additive
// constant in turn (an arbitrary but effective choice, same as upstream).
func pollardRho(n int64) int64 {
	nb := big.NewInt(n)
	for i := len(smallPrimes) - 1; i >= 0; i-- {
		a := big.NewInt(smallPrimes[i])
		slow := new(big.Int).Set(a)
		fast := stepRho(slow, a, nb)
		count := int64(2)
		for {
			diff := new(big.Int).Sub(slow, fast)
			g := new(big.Int).GCD(nil, nil, nb, diff.Abs(diff))
			if g.Sign() != 0 && g.Cmp(big.NewInt(1)) != 0 {
				if g.Cmp(nb) < 0 {
					return g.Int64()
				}
				break
			}
			if count&(count-1) == 0 {
				slow = new(big.Int).Set(fast)
			}
			fast = stepRho(fast, a, nb)
			count++
		}
	}
	panic("rational: pollardRho exhausted the small-prime table")
}

func stepRho(x, a, n *big.Int) *big.Int {
	out := new(big.Int).Mul(x, x)
	out.Add(out, a)
	out.Mod(out, n)
	return out
}

// millerRabin is a deterministic-enough pseudo-primality test for the
// magnitudes this planner ever factors (it is a heuristic matching the
// Python original, not a certified primality proof).
func millerRabin(n int64) bool {
	if n < 0 {
		n = -n
	}
	if n < 3 {
		return n == 2
	}
	nb := big.NewInt(n)
	nMinus1 := new(big.Int).Sub(nb, big.NewInt(1))
	numTwos := 0
	untwo := new(big.Int).Set(nMinus1)
	for untwo.Bit(0) == 0 {
		untwo.Rsh(untwo, 1)
		numTwos++
	}
	witnesses := smallPrimes[len(smallPrimes)-6:]
	for _, p := range witnesses {
		if n%p == 0 {
			return n == p
		}
		pb := big.NewInt(p)
		l := new(big.Int).Exp(pb, untwo, nb)
		one := big.NewInt(1)
		if l.Cmp(one) == 0 || l.Cmp(nMinus1) == 0 {
			continue
		}
		composite := true
		for i := 1; i < numTwos; i++ {
			l.Mul(l, l)
			l.Mod(l, nb)
			if l.Cmp(one) == 0 {
				return false
			}
			if l.Cmp(nMinus1) == 0 {
				composite = false
				break
			}
		}
		if composite {
			return false
		}
	}
	return true
}

// FactorSplit is one (left, right) result of FactorSplitting: number ==
// left*right, left <= maxL, right <= maxR.
type FactorSplit struct {
	Left, Right int64
}

// FactorSplitting enumerates, lazily via the yield callback, every
// factorisation number == left*right with left <= maxL and right <= maxR,
// each exactly once. primes must contain at least every prime factor of
// number. Returning false from yield stops the enumeration early.
//
// This mirrors the Python generator of the same name; Go has no lazy
// generator sugar, so the recursive structure is preserved and driven by
// a callback instead of `yield`, which keeps the pruning discipline
// (never materialising the whole factorisation list) without needing an
// explicit iterator type. The Python original runs its smaller-bound-first
// recursion *and then unconditionally* a second, swapped-bound recursion,
// which double-yields every pair whenever maxL <= maxR; that contradicts
// the "each exactly once" invariant this planner relies on (spec property
// 6), so here the two recursions are mutually exclusive.
func FactorSplitting(number int64, primes []int64, maxL, maxR int64, yield func(FactorSplit) bool) {
	// Put the smaller bound first: it prunes the recursion harder.
	if maxL <= maxR {
		doFactorSplitting(1, number, maxL, maxR, primes, 0, yield)
		return
	}
	doFactorSplitting(1, number, maxR, maxL, primes, 0, func(fs FactorSplit) bool {
		return yield(FactorSplit{fs.Right, fs.Left})
	})
}

func doFactorSplitting(left, right, maxL, maxR int64, primes []int64, index int, yield func(FactorSplit) bool) bool {
	if index >= len(primes) {
		if left <= maxL && right <= maxR {
			return yield(FactorSplit{left, right})
		}
		return true
	}
	prime := primes[index]
	for {
		if !doFactorSplitting(left, right, maxL, maxR, primes, index+1, yield) {
			return false
		}
		if right%prime != 0 {
			return true
		}
		left *= prime
		if left > maxL {
			return true
		}
		right /= prime
	}
}
