//go:build !ios && !android && (amd64 || arm64)

package avutil

// Rational is FFmpeg's AVRational: a fraction with int32 numerator and
// denominator. Arithmetic is implemented in pure Go because purego cannot
// return structs by value on non-Darwin platforms.
type Rational struct {
	Num int32 // Numerator
	Den int32 // Denominator
}

// NewRational creates a Rational with the given numerator and denominator.
func NewRational(num, den int32) Rational {
	return Rational{Num: num, Den: den}
}

// Float64 converts the rational to a float64. Returns 0 if the denominator is 0.
func (r Rational) Float64() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

// Invert returns the inverted rational (den/num).
func (r Rational) Invert() Rational {
	return Rational{Num: r.Den, Den: r.Num}
}

// IsZero returns true if the rational is zero or has a zero denominator.
func (r Rational) IsZero() bool {
	return r.Num == 0 || r.Den == 0
}

// Mul multiplies two rationals and reduces the result.
func (r Rational) Mul(other Rational) Rational {
	return Rational{
		Num: r.Num * other.Num,
		Den: r.Den * other.Den,
	}.Reduce()
}

// Div divides two rationals.
func (r Rational) Div(other Rational) Rational {
	return r.Mul(other.Invert())
}

// Reduce reduces the rational to lowest terms.
func (r Rational) Reduce() Rational {
	if r.Den == 0 {
		return r
	}
	g := gcd(abs(r.Num), abs(r.Den))
	if g == 0 {
		return r
	}
	return Rational{Num: r.Num / g, Den: r.Den / g}
}

// RescaleQ rescales a timestamp from one time base to another with rounding
// to nearest. Equivalent to av_rescale_q.
func RescaleQ(a int64, bq, cq Rational) int64 {
	b := int64(bq.Num) * int64(cq.Den)
	c := int64(bq.Den) * int64(cq.Num)
	if c == 0 {
		return 0
	}
	if a >= 0 {
		return (a*b + c/2) / c
	}
	return (a*b - c/2) / c
}

func gcd(a, b int32) int32 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func abs(x int32) int32 {
	if x < 0 {
		return -x
	}
	return x
}

// TimeBaseAV is FFmpeg's global AV_TIME_BASE_Q (microseconds), used for
// AVFormatContext.duration.
var TimeBaseAV = NewRational(1, 1000000)
