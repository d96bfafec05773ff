package fixedpoint

import (
	"math"
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

var (
	bigTwo64  = new(big.Int).Lsh(big.NewInt(1), 64)
	bigMax128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
)

func toBig(hi, lo uint64) *big.Int {
	v := new(big.Int).SetUint64(hi)
	v.Lsh(v, 64)
	return v.Or(v, new(big.Int).SetUint64(lo))
}

func fitsU128(v *big.Int) bool {
	return v.Sign() >= 0 && v.Cmp(bigMax128) <= 0
}

// seed128 adds the interesting 128-bit magnitudes as (hi, lo) pairs.
func seed128(f *testing.F, add func(hi, lo uint64)) {
	for _, v := range []uint64{0, 1, 2, 1024, 4095, 8191, 10000, 12321, 65535, 12345, 54321, 99999, 45678, 87654, 10001, 9999, 2047, 65534} {
		add(0, v)
	}
	add(math.MaxUint64, math.MaxUint64)
	add(math.MaxUint64>>1, math.MaxUint64)
	add(math.MaxUint64, math.MaxUint64-1)
	add(1, 0)
	add(0, math.MaxUint64)
}

func FuzzFloat64RoundTrip(f *testing.F) {
	for _, v := range []float64{0, 0.00000001, 1, 42.75, 2412345.00067890234102, fractionalScale * 0.99, -1, fractionalScale} {
		f.Add(v)
	}
	f.Fuzz(func(t *testing.T, v float64) {
		q, err := FromFloat64(v)
		if !(v >= 0 && v < fractionalScale) {
			require.ErrorIs(t, err, ErrOutOfRange)
			return
		}
		require.NoError(t, err)
		require.InDelta(t, v, q.Float64(), 1e-12, "value %v", v)
		require.Equal(t, uint64(math.Floor(v)), q.Uint64())
	})
}

func FuzzUint64RoundTrip(f *testing.F) {
	for _, v := range []uint64{0, 1, 42, math.MaxUint64} {
		f.Add(v)
	}
	f.Fuzz(func(t *testing.T, n uint64) {
		q := FromUint64(n)
		require.Equal(t, n, q.Uint64())
		require.Zero(t, q.FractionalBits())
		require.InDelta(t, float64(n), q.Float64(), 1e-12)
	})
}

func FuzzCheckedArithmetic(f *testing.F) {
	seed128(f, func(hi, lo uint64) {
		f.Add(hi, lo, uint64(0), uint64(2))
		f.Add(uint64(0), uint64(3), hi, lo)
	})
	f.Fuzz(func(t *testing.T, aHi, aLo, bHi, bLo uint64) {
		a, b := New(aHi, aLo), New(bHi, bLo)
		ra, rb := toBig(aHi, aLo), toBig(bHi, bLo)

		check := func(name string, got Q64, ok bool, want *big.Int) {
			if want == nil || !fitsU128(want) {
				require.False(t, ok, "%s(%s, %s) should fail", name, ra, rb)
				return
			}
			require.True(t, ok, "%s(%s, %s) should succeed", name, ra, rb)
			require.Zero(t, want.Cmp(got.Raw().ToBig()), "%s(%s, %s)", name, ra, rb)
		}

		sum, ok := a.CheckedAdd(b)
		check("add", sum, ok, new(big.Int).Add(ra, rb))

		diff, ok := a.CheckedSub(b)
		check("sub", diff, ok, new(big.Int).Sub(ra, rb))

		product, ok := a.CheckedMul(b)
		wantProduct := new(big.Int).Mul(ra, rb)
		check("mul", product, ok, wantProduct.Rsh(wantProduct, 64))

		quotient, ok := a.CheckedDiv(b)
		var wantQuotient *big.Int
		if rb.Sign() != 0 {
			wantQuotient = new(big.Int).Mul(ra, bigTwo64)
			wantQuotient.Quo(wantQuotient, rb)
		}
		check("div", quotient, ok, wantQuotient)

		absDiff := new(big.Int).Sub(ra, rb)
		require.Zero(t, absDiff.Abs(absDiff).Cmp(a.AbsDiff(b).Raw().ToBig()))
	})
}

func FuzzSqrtSquare(f *testing.F) {
	seed128(f, func(hi, lo uint64) { f.Add(hi, lo) })
	f.Fuzz(func(t *testing.T, hi, lo uint64) {
		value := toBig(hi, lo)
		v, _ := uint256.FromBig(value)

		root := Sqrt(v)
		square := root.Square().ToBig()

		tolerance := new(big.Int).Quo(value, big.NewInt(1_000_000_000_000))
		drift := new(big.Int).Sub(square, value)
		require.LessOrEqual(t, drift.Abs(drift).Cmp(tolerance), 0,
			"square %s from sqrt %s for %s", square, root, value)

		sq64, ok := root.CheckedSquareUint64()
		if hi != 0 {
			require.False(t, ok, "square of sqrt(%s) should not fit u64", value)
			return
		}
		require.True(t, ok)
		diff := new(big.Int).Sub(new(big.Int).SetUint64(sq64), value)
		require.LessOrEqual(t, diff.Abs(diff).Cmp(tolerance), 0)
	})
}
