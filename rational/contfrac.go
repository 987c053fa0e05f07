package rational

import "math/big"

// Convergent is one term of a continued-fraction expansion: num/den
// approximates the original value, each strictly closer than the last.
type Convergent struct {
	Num, Den int64
}

// ContinuedFraction yields, via yield, the continued-fraction convergents of
// f in increasing order of accuracy, stopping once a convergent reproduces f
// exactly or a convergent's numerator/denominator would overflow int64.
// Returning false from yield stops the enumeration early.
//
// Used by the PLL2 planner's reconciliation step: when the realised PLL2
// frequency misses its target, each convergent of the multiplier is a
// candidate "nearby, simpler" ratio to retry DPLL planning against.
func ContinuedFraction(f Frequency, yield func(Convergent) bool) {
	num := new(big.Int).Set(f.r.Num())
	den := new(big.Int).Set(f.r.Denom())

	p0, q0 := big.NewInt(0), big.NewInt(1)
	p1, q1 := big.NewInt(1), big.NewInt(0)

	n, d := num, den
	for d.Sign() != 0 {
		a := new(big.Int)
		r := new(big.Int)
		a.QuoRem(n, d, r)
		n, d = d, r

		p2 := new(big.Int).Add(new(big.Int).Mul(a, p1), p0)
		q2 := new(big.Int).Add(new(big.Int).Mul(a, q1), q0)
		if !p2.IsInt64() || !q2.IsInt64() {
			return
		}
		if !yield(Convergent{p2.Int64(), q2.Int64()}) {
			return
		}
		p0, q0, p1, q1 = p1, q1, p2, q2
	}
}
