package rational

// SymRange enumerates, via yield, the integers m with 1 <= m <= limit and
// low <= m*f <= high, even values before odd, and within each parity class
// values closest to the midpoint of the valid range first. This ordering is
// what lets callers that want "as square as possible" divider splits stop at
// the first candidate rather than scanning every admissible multiplier.
//
// Grounded on the DPLL/PLL2 planners' use of the same enumeration to find
// output-divider splits and low-BAW stage2 candidates: callers always want
// the even, central candidates tried first.
func SymRange(f, low, high Frequency, limit int64, yield func(int64) bool) {
	if f.IsZero() {
		return
	}
	lowM := divCeil(low, f)
	highM := divFloor(high, f)
	if lowM < 1 {
		lowM = 1
	}
	if highM > limit {
		highM = limit
	}
	if lowM > highM {
		return
	}
	mid := (lowM + highM) / 2

	var evens, odds []int64
	for m := lowM; m <= highM; m++ {
		if m%2 == 0 {
			evens = append(evens, m)
		} else {
			odds = append(odds, m)
		}
	}
	sortByDistance(evens, mid)
	sortByDistance(odds, mid)
	for _, m := range evens {
		if !yield(m) {
			return
		}
	}
	for _, m := range odds {
		if !yield(m) {
			return
		}
	}
}

func sortByDistance(s []int64, mid int64) {
	dist := func(m int64) int64 {
		d := m - mid
		if d < 0 {
			d = -d
		}
		return d
	}
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && dist(s[j-1]) > dist(s[j]); j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// divCeil returns the smallest integer m with m*f >= low.
func divCeil(low, f Frequency) int64 {
	q := low.Div(f)
	n, d := q.Num(), q.Den()
	var m int64
	if d.IsInt64() && d.Int64() == 1 {
		m = n.Int64()
	} else {
		half := new(ceilHelper)
		m = half.ceil(n.Int64(), d.Int64())
	}
	return m
}

// divFloor returns the largest integer m with m*f <= high.
func divFloor(high, f Frequency) int64 {
	q := high.Div(f)
	n, d := q.Num(), q.Den()
	if d.IsInt64() && d.Int64() == 1 {
		return n.Int64()
	}
	return floorDiv(n.Int64(), d.Int64())
}

type ceilHelper struct{}

func (ceilHelper) ceil(n, d int64) int64 {
	return -floorDiv(-n, d)
}

func floorDiv(n, d int64) int64 {
	q := n / d
	if (n%d != 0) && ((n < 0) != (d < 0)) {
		q--
	}
	return q
}
