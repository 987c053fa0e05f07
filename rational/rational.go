// Package rational provides exact rational arithmetic for frequency
// planning: construction from strings with SI unit suffixes, denominator
// limiting, divisibility and LCM over fractions, and the handful of
// generator-style helpers the planner needs (sym_range, continued
// fractions). Everything is backed by math/big.Rat: none of the example
// corpus carries a dedicated bignum/rational library, and math/big is the
// idiomatic, zero-dependency way to get unbounded-precision rationals in
// Go.
package rational

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// Frequency is an exact, non-negative rational number of hertz. The zero
// value denotes "output disabled".
type Frequency struct {
	r big.Rat
}

// FromInt64 builds a Frequency equal to n Hz.
func FromInt64(n int64) Frequency {
	var f Frequency
	f.r.SetInt64(n)
	return f
}

// FromRat wraps an existing big.Rat as a Frequency. The numerator must be
// non-negative.
func FromRat(r *big.Rat) Frequency {
	var f Frequency
	f.r.Set(r)
	return f
}

// FromFraction builds num/den Hz.
func FromFraction(num, den int64) Frequency {
	var f Frequency
	f.r.SetFrac64(num, den)
	return f
}

// Zero is the disabled-output frequency.
var Zero = Frequency{}

// IsZero reports whether the frequency is exactly zero.
func (f Frequency) IsZero() bool {
	return f.r.Sign() == 0
}

// Rat returns the underlying rational. Callers must not mutate it.
func (f Frequency) Rat() *big.Rat {
	return &f.r
}

// Num and Den expose the reduced numerator/denominator.
func (f Frequency) Num() *big.Int { return f.r.Num() }
func (f Frequency) Den() *big.Int { return f.r.Denom() }

func mulRat(a, b *big.Rat) Frequency {
	var out Frequency
	out.r.Mul(a, b)
	return out
}

// Mul returns f * g.
func (f Frequency) Mul(g Frequency) Frequency { return mulRat(&f.r, &g.r) }

// Div returns f / g. g must be non-zero.
func (f Frequency) Div(g Frequency) Frequency {
	var out Frequency
	out.r.Quo(&f.r, &g.r)
	return out
}

// MulInt64 returns f * n.
func (f Frequency) MulInt64(n int64) Frequency {
	var m big.Rat
	m.SetInt64(n)
	return mulRat(&f.r, &m)
}

// DivInt64 returns f / n.
func (f Frequency) DivInt64(n int64) Frequency {
	var m big.Rat
	m.SetInt64(n)
	var out Frequency
	out.r.Quo(&f.r, &m)
	return out
}

// Add returns f + g.
func (f Frequency) Add(g Frequency) Frequency {
	var out Frequency
	out.r.Add(&f.r, &g.r)
	return out
}

// Sub returns f - g.
func (f Frequency) Sub(g Frequency) Frequency {
	var out Frequency
	out.r.Sub(&f.r, &g.r)
	return out
}

// Neg returns -f.
func (f Frequency) Neg() Frequency {
	var out Frequency
	out.r.Neg(&f.r)
	return out
}

// Abs returns |f|.
func (f Frequency) Abs() Frequency {
	var out Frequency
	out.r.Abs(&f.r)
	return out
}

// Cmp compares f to g: -1, 0, +1.
func (f Frequency) Cmp(g Frequency) int { return f.r.Cmp(&g.r) }

// Less reports f < g.
func (f Frequency) Less(g Frequency) bool { return f.Cmp(g) < 0 }

// Equal reports f == g.
func (f Frequency) Equal(g Frequency) bool { return f.Cmp(g) == 0 }

// Float64 converts to a float64, for display only.
func (f Frequency) Float64() float64 {
	out, _ := f.r.Float64()
	return out
}

// Int64 returns the frequency as an integer hertz count, only valid when
// Den() == 1.
func (f Frequency) Int64() int64 {
	return f.r.Num().Int64()
}

// IsInteger reports whether the frequency has denominator 1.
func (f Frequency) IsInteger() bool {
	return f.r.IsInt()
}

// well-known unit scales.
var (
	unitHz  = big.NewRat(1, 1)
	unitKHz = big.NewRat(1000, 1)
	unitMHz = big.NewRat(1000000, 1)
	unitGHz = big.NewRat(1000000000, 1)
)

// ParseFrequency parses a decimal number with an optional SI suffix
// (case-insensitive "Hz", "k"/"kHz", "M"/"MHz", "G"/"GHz"). No suffix
// defaults to MHz, matching the original tool's CLI convention.
func ParseFrequency(s string) (Frequency, error) {
	orig := s
	lower := strings.ToLower(strings.TrimSpace(s))
	scale := unitMHz
	numeric := lower
	switch {
	case strings.HasSuffix(lower, "ghz"):
		scale, numeric = unitGHz, strings.TrimSuffix(lower, "ghz")
	case strings.HasSuffix(lower, "mhz"):
		scale, numeric = unitMHz, strings.TrimSuffix(lower, "mhz")
	case strings.HasSuffix(lower, "khz"):
		scale, numeric = unitKHz, strings.TrimSuffix(lower, "khz")
	case strings.HasSuffix(lower, "hz"):
		scale, numeric = unitHz, strings.TrimSuffix(lower, "hz")
	case strings.HasSuffix(lower, "g"):
		scale, numeric = unitGHz, strings.TrimSuffix(lower, "g")
	case strings.HasSuffix(lower, "m"):
		scale, numeric = unitMHz, strings.TrimSuffix(lower, "m")
	case strings.HasSuffix(lower, "k"):
		scale, numeric = unitKHz, strings.TrimSuffix(lower, "k")
	}
	numeric = strings.TrimSpace(numeric)

	var value big.Rat
	if _, ok := value.SetString(numeric); !ok {
		return Frequency{}, fmt.Errorf("rational: invalid frequency %q", orig)
	}
	var out Frequency
	out.r.Mul(&value, scale)
	return out, nil
}

// namedFractions gives the original tool's small set of "nice" fractional
// remainders a dedicated glyph, used only for display.
var namedFractions = []struct {
	num, den int64
	glyph    string
}{
	{1, 3, "⅓"}, {2, 3, "⅔"},
	{1, 6, "⅙"}, {5, 6, "⅚"},
	{1, 7, "⅐"}, {1, 9, "⅑"},
}

// String renders a human-readable frequency: an integer part in the most
// sensible unit (Hz..THz), with a named-fraction glyph or a "+n/d" suffix
// when the residue is a small, recognisable fraction.
func (f Frequency) String() string {
	r := &f.r
	var scale *big.Rat
	var suffix string
	switch {
	case r.Cmp(new(big.Rat).Mul(unitMHz, big.NewRat(1000000, 1))) >= 0:
		scale, suffix = new(big.Rat).Mul(unitMHz, big.NewRat(1000000, 1)), "THz"
	case r.Cmp(new(big.Rat).Mul(unitMHz, big.NewRat(10000, 1))) >= 0:
		scale, suffix = new(big.Rat).Mul(unitMHz, big.NewRat(1000, 1)), "GHz"
	case r.Cmp(unitMHz) >= 0:
		scale, suffix = unitMHz, "MHz"
	case r.Cmp(unitKHz) >= 0:
		scale, suffix = unitKHz, "kHz"
	default:
		scale, suffix = unitHz, "Hz"
	}
	var scaled big.Rat
	scaled.Quo(r, scale)

	whole := new(big.Int).Quo(scaled.Num(), scaled.Denom())
	var fract big.Rat
	fract.Sub(&scaled, new(big.Rat).SetInt(whole))

	for _, nf := range namedFractions {
		if fract.Cmp(big.NewRat(nf.num, nf.den)) == 0 {
			return fmt.Sprintf("%s%s %s", whole.String(), nf.glyph, suffix)
		}
	}
	den := fract.Denom().Int64()
	if fract.Sign() != 0 && (den == 6 || den == 7 || den == 9 || (den >= 11 && den <= 19)) {
		return fmt.Sprintf("%s+%s %s", whole.String(), fract.RatString(), suffix)
	}
	fScaled, _ := scaled.Float64()
	return fmt.Sprintf("%s %s", strconv.FormatFloat(fScaled, 'g', -1, 64), suffix)
}

// LimitDenominator returns the Farey-neighbour rational closest to f whose
// denominator does not exceed maxDen (Stern-Brocot mediant search,
// matching Python's Fraction.limit_denominator).
func (f Frequency) LimitDenominator(maxDen int64) Frequency {
	if f.r.Denom().IsInt64() && f.r.Denom().Int64() <= maxDen {
		return f
	}
	neg := f.r.Sign() < 0
	num := new(big.Int).Abs(f.r.Num())
	den := new(big.Int).Set(f.r.Denom())
	limit := big.NewInt(maxDen)

	// Continued-fraction convergent search, the standard implementation
	// behind Python's Fraction.limit_denominator.
	p0, q0 := big.NewInt(0), big.NewInt(1)
	p1, q1 := big.NewInt(1), big.NewInt(0)
	n, d := new(big.Int).Set(num), new(big.Int).Set(den)
	for d.Sign() != 0 {
		a := new(big.Int)
		r := new(big.Int)
		a.QuoRem(n, d, r)
		n, d = d, r

		p2 := new(big.Int).Add(new(big.Int).Mul(a, p1), p0)
		q2 := new(big.Int).Add(new(big.Int).Mul(a, q1), q0)
		if q2.Cmp(limit) > 0 {
			break
		}
		p0, q0, p1, q1 = p1, q1, p2, q2
	}
	// p1/q1 is now the best convergent with denominator <= limit. Try
	// one more semiconvergent step, and compare it against p1/q1, keeping
	// p1/q1 on a tie.
	k := new(big.Int).Sub(limit, q0)
	k.Quo(k, q1)
	best := ratOf(p1, q1)
	if k.Sign() > 0 {
		p2 := new(big.Int).Add(new(big.Int).Mul(k, p1), p0)
		q2 := new(big.Int).Add(new(big.Int).Mul(k, q1), q0)
		candidate := ratOf(p2, q2)
		target := new(big.Rat).SetFrac(num, den)
		if absDiff(candidate, target).Cmp(absDiff(best, target)) < 0 {
			best = candidate
		}
	}
	if neg {
		best.Neg(best)
	}
	return FromRat(best)
}

func ratOf(n, d *big.Int) *big.Rat {
	return new(big.Rat).SetFrac(n, d)
}

func absDiff(a, b *big.Rat) *big.Rat {
	d := new(big.Rat).Sub(a, b)
	return d.Abs(d)
}

// IsMultipleOf reports whether b exactly divides a: a's numerator is a
// multiple of b's numerator, and b's denominator is a multiple of a's
// denominator. b must be non-zero.
func IsMultipleOf(a, b Frequency) bool {
	if b.IsZero() {
		return false
	}
	var m big.Int
	m.Mod(a.r.Num(), b.r.Num())
	if m.Sign() != 0 {
		return false
	}
	m.Mod(b.r.Denom(), a.r.Denom())
	return m.Sign() == 0
}

// FractLCM returns the smallest positive rational that is an integer
// multiple of each of a and b.
func FractLCM(a, b Frequency) Frequency {
	g1 := new(big.Int).GCD(nil, nil, a.r.Denom(), b.r.Denom())
	g2 := new(big.Int).GCD(nil, nil, a.r.Num(), b.r.Num())
	u := new(big.Int).Quo(a.r.Denom(), g1)
	u.Mul(u, new(big.Int).Quo(b.r.Num(), g2))
	var out big.Rat
	out.Mul(&a.r, new(big.Rat).SetInt(u))
	return FromRat(&out)
}
