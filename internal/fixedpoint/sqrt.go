package fixedpoint

import (
	"math"

	"github.com/holiman/uint256"
)

var (
	u256One       = uint256.NewInt(1)
	maxUint128    = new(uint256.Int).Sub(new(uint256.Int).Lsh(u256One, 2*FracBits), u256One)
	squareMulUnit = new(uint256.Int).Lsh(u256One, 3*FracBits)
)

// sqrtRefineStep is the first adjustment, in raw units, applied while
// refining the binary-search estimate.
const sqrtRefineStep = 512

// Square returns the integer part of q², i.e. (raw*raw) >> 128. The result
// always fits in 128 bits.
func (q Q64) Square() *uint256.Int {
	switch {
	case q.IsZero():
		return new(uint256.Int)
	case q.isOne():
		return uint256.NewInt(1)
	}
	sq := new(uint256.Int).Mul(&q.raw, &q.raw)
	return sq.Rsh(sq, 2*FracBits)
}

// CheckedSquareUint64 returns the integer part of q², or false when it does
// not fit in 64 bits.
func (q Q64) CheckedSquareUint64() (uint64, bool) {
	sq := q.Square()
	if !sq.IsUint64() {
		return 0, false
	}
	return sq.Uint64(), true
}

// SquareMul returns floor(q² * m), or false when it exceeds 128 bits.
func (q Q64) SquareMul(m Q64) (*uint256.Int, bool) {
	sq := new(uint256.Int).Mul(&q.raw, &q.raw)
	res, overflow := new(uint256.Int).MulDivOverflow(sq, &m.raw, squareMulUnit)
	if overflow || res.BitLen() > 2*FracBits {
		return nil, false
	}
	return res, true
}

// SquareDiv returns floor(q² / d), or false when d is zero or the result
// exceeds 128 bits.
func (q Q64) SquareDiv(d Q64) (*uint256.Int, bool) {
	if d.IsZero() {
		return nil, false
	}
	res := new(uint256.Int).Mul(&q.raw, &q.raw)
	res.Div(res, &d.raw)
	res.Rsh(res, FracBits)
	if res.BitLen() > 2*FracBits {
		return nil, false
	}
	return res, true
}

// CheckedSquareDivUint64 is SquareDiv narrowed to 64 bits.
func (q Q64) CheckedSquareDivUint64(d Q64) (uint64, bool) {
	res, ok := q.SquareDiv(d)
	if !ok || !res.IsUint64() {
		return 0, false
	}
	return res.Uint64(), true
}

// Sqrt returns an approximation of the square root of a 128-bit integer.
//
// A binary search over [0, value<<64] finds the largest raw magnitude whose
// square does not exceed value. The estimate is then nudged by 512, 256, ...
// 1 raw units until its integer square matches value. Results are tolerance
// bounded, not exact: Sqrt(v).Square() is within v/1e12 of v.
//
// Sqrt panics with ErrOverflow when value needs more than 128 bits.
func Sqrt(value *uint256.Int) Q64 {
	if value.BitLen() > 2*FracBits {
		panic(ErrOverflow)
	}
	switch {
	case value.IsZero():
		return Zero
	case value.Eq(u256One):
		return One
	case value.Eq(maxUint128):
		return FromUint64(math.MaxUint64)
	}

	scaled := new(uint256.Int).Lsh(value, FracBits)
	low := new(uint256.Int)
	high := scaled.Clone()

	var mid, sq, span uint256.Int
	for {
		span.Sub(high, low)
		if !span.Gt(u256One) {
			break
		}
		mid.Add(low, high)
		mid.Rsh(&mid, 1)

		// An overflowing square is larger than any scaled value.
		_, overflow := sq.MulOverflow(&mid, &mid)
		if !overflow {
			sq.Rsh(&sq, FracBits)
		}
		if !overflow && !sq.Gt(scaled) {
			low.Set(&mid)
		} else {
			high.Set(&mid)
		}
	}

	root := Q64{raw: *low}
	var next uint256.Int
	for step := uint64(sqrtRefineStep); step >= 1; step >>= 1 {
		cmp := root.Square().Cmp(value)
		if cmp == 0 {
			break
		}
		delta := uint256.NewInt(step)
		if cmp < 0 {
			next.Add(&root.raw, delta)
			if next.BitLen() > 2*FracBits {
				continue
			}
			root.raw.Set(&next)
		} else {
			root.raw.Sub(&root.raw, delta)
		}
	}
	return root
}
