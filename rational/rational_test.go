package rational

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestParseFrequency(t *testing.T) {
	cases := []struct {
		in   string
		want Frequency
	}{
		{"1MHz", FromInt64(1000000)},
		{"1.5MHz", FromFraction(15, 10).MulInt64(1000000)},
		{"100", FromInt64(100000000)},
		{"32768.298Hz", FromFraction(32768298, 1000)},
		{"1.5k", FromInt64(1500)},
		{"2G", FromInt64(2000000000)},
	}
	for _, c := range cases {
		got, err := ParseFrequency(c.in)
		assert.NoError(t, err)
		assert.True(t, got.Equal(c.want), "ParseFrequency(%q) = %v, want %v", c.in, got, c.want)
	}
}

func TestParseFrequencyInvalid(t *testing.T) {
	_, err := ParseFrequency("banana")
	assert.Error(t, err)
}

func TestIsMultipleOf(t *testing.T) {
	assert.True(t, IsMultipleOf(FromInt64(100), FromInt64(25)))
	assert.False(t, IsMultipleOf(FromInt64(100), FromInt64(30)))
	assert.False(t, IsMultipleOf(FromInt64(100), Zero))
	half := FromFraction(1, 2)
	assert.True(t, IsMultipleOf(FromInt64(10), half))
}

func TestLimitDenominator(t *testing.T) {
	pi := FromRat(big.NewRat(103993, 33102))
	got := pi.LimitDenominator(100)
	assert.LessOrEqual(t, got.Den().Int64(), int64(100))
	assert.True(t, got.Equal(FromFraction(311, 99)) || got.Equal(FromFraction(22, 7)))
}

func TestLimitDenominatorAlreadySmall(t *testing.T) {
	f := FromFraction(1, 3)
	assert.True(t, f.LimitDenominator(100).Equal(f))
}

// Property 6 (partial): fract_lcm is an integer multiple of each input.
func TestFractLCMIsMultiple(t *testing.T) {
	rapid.Check(t, func(tt *rapid.T) {
		an := rapid.Int64Range(1, 1_000_000).Draw(tt, "an")
		ad := rapid.Int64Range(1, 1_000_000).Draw(tt, "ad")
		bn := rapid.Int64Range(1, 1_000_000).Draw(tt, "bn")
		bd := rapid.Int64Range(1, 1_000_000).Draw(tt, "bd")
		a := FromFraction(an, ad)
		b := FromFraction(bn, bd)
		l := FractLCM(a, b)
		assert.True(tt, IsMultipleOf(l, a), "lcm(%v,%v)=%v not a multiple of a", a, b, l)
		assert.True(tt, IsMultipleOf(l, b), "lcm(%v,%v)=%v not a multiple of b", a, b, l)
	})
}

func TestSymRangeOrdering(t *testing.T) {
	f := FromInt64(1)
	low := FromInt64(10)
	high := FromInt64(20)
	var got []int64
	SymRange(f, low, high, 100, func(m int64) bool {
		got = append(got, m)
		return true
	})
	assert.NotEmpty(t, got)
	for _, m := range got {
		assert.GreaterOrEqual(t, m, int64(10))
		assert.LessOrEqual(t, m, int64(20))
	}
	// evens come first
	sawOdd := false
	for _, m := range got {
		if m%2 != 0 {
			sawOdd = true
		} else {
			assert.False(t, sawOdd, "even %d appeared after an odd value", m)
		}
	}
}

func TestSymRangeRespectsLimit(t *testing.T) {
	f := FromInt64(1)
	var got []int64
	SymRange(f, FromInt64(1), FromInt64(1000), 5, func(m int64) bool {
		got = append(got, m)
		return true
	})
	for _, m := range got {
		assert.LessOrEqual(t, m, int64(5))
	}
}

func TestContinuedFractionConverges(t *testing.T) {
	f := FromFraction(355, 113)
	var last Convergent
	ContinuedFraction(f, func(c Convergent) bool {
		last = c
		return true
	})
	assert.Equal(t, int64(355), last.Num)
	assert.Equal(t, int64(113), last.Den)
}

func TestStringNamedFraction(t *testing.T) {
	f := FromInt64(1).Add(FromFraction(1, 3)).MulInt64(1000000)
	assert.Contains(t, f.String(), "⅓")
}
