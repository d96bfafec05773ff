package fixedpoint

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
)

const decimalScale = 18

var fractionalDenom = new(big.Int).Lsh(big.NewInt(1), FracBits)

// String renders q as a decimal with 18 fractional digits.
func (q Q64) String() string {
	rat := new(big.Rat).SetFrac(q.raw.ToBig(), fractionalDenom)
	return rat.FloatString(decimalScale)
}

// MarshalText encodes the raw magnitude as 0x-prefixed hex.
func (q Q64) MarshalText() ([]byte, error) {
	return []byte(hexutil.EncodeBig(q.raw.ToBig())), nil
}

// UnmarshalText decodes a 0x-prefixed hex raw magnitude.
func (q *Q64) UnmarshalText(input []byte) error {
	b, err := hexutil.DecodeBig(string(input))
	if err != nil {
		return fmt.Errorf("decode q64: %w", err)
	}
	raw, overflow := uint256.FromBig(b)
	if overflow {
		return ErrOverflow
	}
	v, err := FromRaw(raw)
	if err != nil {
		return err
	}
	*q = v
	return nil
}
