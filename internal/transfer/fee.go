// Package transfer models token movements into and out of a pool when the
// token mint charges a transfer fee. The pool only ever sees what arrives,
// so every calculation downstream uses AmountAfterFee.
package transfer

import (
	"fmt"

	gmath "github.com/ethereum/go-ethereum/common/math"
	"github.com/holiman/uint256"
)

// MaxBasisPoints is the fee denominator.
const MaxBasisPoints = 10_000

// FeeConfig is a mint's transfer fee: a rate in basis points capped at
// MaximumFee raw units.
type FeeConfig struct {
	BasisPoints uint16 `json:"basis_points"`
	MaximumFee  uint64 `json:"maximum_fee"`
}

// Fee returns min(ceil(amount·bp/10000), MaximumFee).
func (c FeeConfig) Fee(amount uint64) (uint64, error) {
	if c.BasisPoints > MaxBasisPoints {
		return 0, fmt.Errorf("%w: %d basis points", ErrMintTransferFeeCalculationFailed, c.BasisPoints)
	}
	if c.BasisPoints == 0 || amount == 0 {
		return 0, nil
	}
	fee := new(uint256.Int).Mul(uint256.NewInt(amount), uint256.NewInt(uint64(c.BasisPoints)))
	fee.Add(fee, uint256.NewInt(MaxBasisPoints-1))
	fee.Div(fee, uint256.NewInt(MaxBasisPoints))
	if !fee.IsUint64() || fee.Uint64() > c.MaximumFee {
		return c.MaximumFee, nil
	}
	return fee.Uint64(), nil
}

// Transfer is an amount leaving a balance, split into the fee withheld by
// the mint and the amount that actually arrives.
type Transfer struct {
	rawAmount uint64
	fee       uint64
}

// NewTransfer prepares moving amount out of balance. A nil fee config means
// the mint charges nothing.
func NewTransfer(amount, balance uint64, cfg *FeeConfig) (Transfer, error) {
	if amount > balance {
		return Transfer{}, fmt.Errorf("%w: amount %d, balance %d", ErrInsufficientBalance, amount, balance)
	}
	if cfg == nil {
		return Transfer{rawAmount: amount}, nil
	}
	fee, err := cfg.Fee(amount)
	if err != nil {
		return Transfer{}, err
	}
	if _, underflow := gmath.SafeSub(amount, fee); underflow {
		return Transfer{}, ErrMintTransferFeeCalculationFailed
	}
	return Transfer{rawAmount: amount, fee: fee}, nil
}

func (t Transfer) RawAmount() uint64 { return t.rawAmount }
func (t Transfer) Fee() uint64 { return t.fee }

// AmountAfterFee is what the receiver is credited with.
func (t Transfer) AmountAfterFee() uint64 { return t.rawAmount - t.fee }
