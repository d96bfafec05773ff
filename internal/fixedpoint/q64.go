// Package fixedpoint implements Q64, an unsigned 64.64 fixed-point number
// backed by a 128-bit magnitude. Products and quotients are computed in
// 256-bit intermediates so that nothing is lost before the final shift.
package fixedpoint

import (
	"math"

	"github.com/holiman/uint256"
)

const (
	// FracBits is the number of fractional bits in a Q64 value.
	FracBits = 64

	fractionalScale = 18446744073709551616.0 // 2^64
)

// Q64 is an unsigned 64.64 fixed-point number. The zero value is 0.
//
// The magnitude lives in a 256-bit word whose upper two limbs are always zero.
type Q64 struct {
	raw uint256.Int
}

var (
	Zero = Q64{}
	One  = FromUint64(1)
	Max  = New(math.MaxUint64, math.MaxUint64)
)

// New builds a Q64 from the high (integer) and low (fractional) halves of
// its raw magnitude.
func New(hi, lo uint64) Q64 {
	var q Q64
	q.raw[1] = hi
	q.raw[0] = lo
	return q
}

// FromRaw builds a Q64 from a raw magnitude. It fails when raw needs more
// than 128 bits.
func FromRaw(raw *uint256.Int) (Q64, error) {
	q, ok := narrow(raw)
	if !ok {
		return Zero, ErrOverflow
	}
	return q, nil
}

// FromUint64 converts an integer to Q64.
func FromUint64(v uint64) Q64 {
	return New(v, 0)
}

// FromFloat64 converts f to Q64. f must be in [0, 2^64).
func FromFloat64(f float64) (Q64, error) {
	if !(f >= 0 && f < fractionalScale) {
		return Zero, ErrOutOfRange
	}
	intPart := math.Floor(f)
	frac := math.Round((f - intPart) * fractionalScale)
	hi := uint64(intPart)
	if frac >= fractionalScale {
		return New(hi+1, 0), nil
	}
	return New(hi, uint64(frac)), nil
}

// Float64 returns the nearest float64. Precision is lost beyond roughly 15
// significant digits.
func (q Q64) Float64() float64 {
	return float64(q.raw[1]) + float64(q.raw[0])/fractionalScale
}

// Uint64 returns the integer part, truncating the fraction.
func (q Q64) Uint64() uint64 {
	return q.raw[1]
}

func (q Q64) IntegerBits() uint64 {
	return q.raw[1]
}

func (q Q64) FractionalBits() uint64 {
	return q.raw[0]
}

// Raw returns a copy of the raw magnitude.
func (q Q64) Raw() *uint256.Int {
	return q.raw.Clone()
}

// SetRaw overwrites the raw magnitude. Only tests should need it.
func (q *Q64) SetRaw(hi, lo uint64) {
	*q = New(hi, lo)
}

func (q Q64) IsZero() bool {
	return q.raw.IsZero()
}

func (q Q64) isOne() bool {
	return q.raw[1] == 1 && q.raw[0] == 0
}

// Cmp compares q and o and returns -1, 0 or +1.
func (q Q64) Cmp(o Q64) int {
	return q.raw.Cmp(&o.raw)
}

// AbsDiff returns |q - o|.
func (q Q64) AbsDiff(o Q64) Q64 {
	var r Q64
	if q.raw.Lt(&o.raw) {
		r.raw.Sub(&o.raw, &q.raw)
	} else {
		r.raw.Sub(&q.raw, &o.raw)
	}
	return r
}

// CheckedAdd returns q + o, or false when the sum exceeds 128 bits.
func (q Q64) CheckedAdd(o Q64) (Q64, bool) {
	var sum uint256.Int
	sum.Add(&q.raw, &o.raw)
	return narrow(&sum)
}

// CheckedSub returns q - o, or false when o > q.
func (q Q64) CheckedSub(o Q64) (Q64, bool) {
	if q.raw.Lt(&o.raw) {
		return Zero, false
	}
	var r Q64
	r.raw.Sub(&q.raw, &o.raw)
	return r, true
}

// CheckedMul returns (q * o) >> 64, or false when the result exceeds 128 bits.
func (q Q64) CheckedMul(o Q64) (Q64, bool) {
	var product uint256.Int
	product.Mul(&q.raw, &o.raw)
	product.Rsh(&product, FracBits)
	return narrow(&product)
}

// CheckedDiv returns (q << 64) / o, or false when o is zero or the quotient
// exceeds 128 bits.
func (q Q64) CheckedDiv(o Q64) (Q64, bool) {
	if o.IsZero() {
		return Zero, false
	}
	var quotient uint256.Int
	quotient.Lsh(&q.raw, FracBits)
	quotient.Div(&quotient, &o.raw)
	return narrow(&quotient)
}

// Add returns q + o and panics on overflow.
func (q Q64) Add(o Q64) Q64 {
	r, ok := q.CheckedAdd(o)
	if !ok {
		panic(ErrOverflow)
	}
	return r
}

// Sub returns q - o and panics when the result would be negative.
func (q Q64) Sub(o Q64) Q64 {
	r, ok := q.CheckedSub(o)
	if !ok {
		panic(ErrUnderflow)
	}
	return r
}

// Mul returns q * o and panics on overflow.
func (q Q64) Mul(o Q64) Q64 {
	r, ok := q.CheckedMul(o)
	if !ok {
		panic(ErrOverflow)
	}
	return r
}

// Div returns q / o. It panics when o is zero or the quotient overflows.
func (q Q64) Div(o Q64) Q64 {
	if o.IsZero() {
		panic(ErrDivisionByZero)
	}
	r, ok := q.CheckedDiv(o)
	if !ok {
		panic(ErrOverflow)
	}
	return r
}

func narrow(v *uint256.Int) (Q64, bool) {
	if v.BitLen() > 2*FracBits {
		return Zero, false
	}
	var q Q64
	q.raw.Set(v)
	return q, true
}
