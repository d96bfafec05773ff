// Package cpamm implements the constant-product invariant math of the pool:
// launch supply, proportional minting and redemption, post-swap reserves,
// fees and tolerance checks.
//
// Every calculation is a pure function of its arguments and a read-only
// State snapshot. Callers read the state, call into this package and then
// commit the returned payload atomically.
package cpamm

import (
	"fmt"
	"strings"

	gmath "github.com/ethereum/go-ethereum/common/math"
	"github.com/holiman/uint256"

	"cpmm/internal/fixedpoint"
)

const (
	// LpMintInitialDecimals sets the permanently locked launch supply to
	// 10^LpMintInitialDecimals raw lp units.
	LpMintInitialDecimals = 5
	// InitialLockedLiquidity is 10^LpMintInitialDecimals.
	InitialLockedLiquidity uint64 = 100_000
	// FeeMaxBasisPoints is the fee denominator.
	FeeMaxBasisPoints = 10_000
)

var (
	// SwapConstantProductTolerance is 0.0001% as a Q64 fraction.
	SwapConstantProductTolerance = fixedpoint.New(0, 18446744073710)
	// LiquidityRatioTolerance is 0.0001% as a Q64 fraction.
	LiquidityRatioTolerance = fixedpoint.New(0, 18446744073710)
)

// State is the read-only view of a pool that the calculator needs.
type State interface {
	ConstantProductSqrt() fixedpoint.Q64
	BaseQuoteRatio() fixedpoint.Q64
	BaseLiquidity() uint64
	QuoteLiquidity() uint64
	LpTokensSupply() uint64
	ProvidersFeeRateBasisPoints() uint16
	ProtocolFeeRateBasisPoints() uint16
}

// Direction selects which side of the pool a swap pays into.
type Direction uint8

const (
	BaseIn Direction = iota
	QuoteIn
)

func (d Direction) String() string {
	switch d {
	case BaseIn:
		return "base_in"
	case QuoteIn:
		return "quote_in"
	default:
		return fmt.Sprintf("direction(%d)", uint8(d))
	}
}

// ParseDirection accepts "base_in"/"base" and "quote_in"/"quote".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "base_in", "base-in", "base":
		return BaseIn, nil
	case "quote_in", "quote-in", "quote":
		return QuoteIn, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
	}
}

func (d Direction) MarshalText() ([]byte, error) {
	if d != BaseIn && d != QuoteIn {
		return nil, ErrInvalidDirection
	}
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// LaunchLpTokens derives the launch supply from the initial constant product
// square root. InitialLockedLiquidity of it stays locked forever; the rest
// goes to the launcher and must be at least four times the locked amount.
func LaunchLpTokens(constantProductSqrt fixedpoint.Q64) (supply, launcherShare uint64, err error) {
	supply = constantProductSqrt.Uint64()
	if supply == 0 {
		return 0, 0, ErrLpTokensCalculationFailed
	}
	launcherShare, overflow := gmath.SafeSub(supply, InitialLockedLiquidity)
	if overflow || launcherShare < InitialLockedLiquidity<<2 {
		return 0, 0, ErrLaunchLiquidityTooSmall
	}
	return supply, launcherShare, nil
}

// LpMintForProvidedLiquidity returns the lp tokens owed for growing the
// constant product square root to newSqrt. Dust deposits mint nothing and
// report false.
func LpMintForProvidedLiquidity(s State, newSqrt fixedpoint.Q64) (uint64, bool) {
	current := s.ConstantProductSqrt()
	provided, ok := newSqrt.CheckedSub(current)
	if !ok {
		return 0, false
	}
	share, ok := provided.CheckedDiv(current)
	if !ok {
		return 0, false
	}
	tokens, ok := share.CheckedMul(fixedpoint.FromUint64(s.LpTokensSupply()))
	if !ok || tokens.Uint64() == 0 {
		return 0, false
	}
	return tokens.Uint64(), true
}

// LiquidityFromShare returns the base and quote amounts redeemable for
// lpTokens.
func LiquidityFromShare(s State, lpTokens uint64) (base, quote uint64, ok bool) {
	if lpTokens == 0 {
		return 0, 0, false
	}
	share, ok := fixedpoint.FromUint64(lpTokens).CheckedDiv(fixedpoint.FromUint64(s.LpTokensSupply()))
	if !ok {
		return 0, 0, false
	}
	sqrtShare, ok := s.ConstantProductSqrt().CheckedMul(share)
	if !ok {
		return 0, 0, false
	}

	// (sqrt·share)²·ratio = base², (sqrt·share)²/ratio = quote²
	baseSquare, ok := sqrtShare.SquareMul(s.BaseQuoteRatio())
	if !ok {
		return 0, 0, false
	}
	quoteSquare, ok := sqrtShare.SquareDiv(s.BaseQuoteRatio())
	if !ok {
		return 0, 0, false
	}

	base = fixedpoint.Sqrt(baseSquare).Uint64()
	quote = fixedpoint.Sqrt(quoteSquare).Uint64()
	if base == 0 || quote == 0 {
		return 0, 0, false
	}
	return base, quote, true
}

// AfterswapLiquidity adds swapAmount to the side selected by dir and derives
// the other side from the constant product.
func AfterswapLiquidity(s State, swapAmount uint64, dir Direction) (base, quote uint64, ok bool) {
	var overflow bool
	switch dir {
	case BaseIn:
		if base, overflow = gmath.SafeAdd(s.BaseLiquidity(), swapAmount); overflow {
			return 0, 0, false
		}
		quote, ok = OppositeLiquidity(s, base)
	case QuoteIn:
		if quote, overflow = gmath.SafeAdd(s.QuoteLiquidity(), swapAmount); overflow {
			return 0, 0, false
		}
		base, ok = OppositeLiquidity(s, quote)
	}
	if !ok {
		return 0, 0, false
	}
	return base, quote, true
}

// OppositeLiquidity solves k = x·y for y: floor(sqrt² / given).
func OppositeLiquidity(s State, given uint64) (uint64, bool) {
	opposite, ok := s.ConstantProductSqrt().CheckedSquareDivUint64(fixedpoint.FromUint64(given))
	if !ok || opposite == 0 {
		return 0, false
	}
	return opposite, true
}

// ValidateLiquidityRatio recomputes the base/quote ratio for the proposed
// reserves and rejects it when it drifts from the current ratio by more
// than LiquidityRatioTolerance. On success the new ratio is returned.
func ValidateLiquidityRatio(s State, newBase, newQuote uint64) (fixedpoint.Q64, error) {
	ratio, ok := BaseQuoteRatio(newBase, newQuote)
	if !ok {
		return fixedpoint.Zero, ErrBaseQuoteRatioCalculationFailed
	}
	current := s.BaseQuoteRatio()
	if current.AbsDiff(ratio).Cmp(current.Mul(LiquidityRatioTolerance)) > 0 {
		return fixedpoint.Zero, ErrLiquidityRatioToleranceExceeded
	}
	return ratio, nil
}

// ValidateSwapConstantProduct rejects post-swap reserves whose constant
// product square root drifts from the current one by more than
// SwapConstantProductTolerance.
func ValidateSwapConstantProduct(s State, newBase, newQuote uint64) error {
	sqrt, ok := ConstantProductSqrt(newBase, newQuote)
	if !ok {
		return ErrConstantProductCalculationFailed
	}
	current := s.ConstantProductSqrt()
	if current.AbsDiff(sqrt).Cmp(current.Mul(SwapConstantProductTolerance)) > 0 {
		return ErrConstantProductToleranceExceeded
	}
	return nil
}

// ProtocolFeeAmount returns floor(amount · protocol rate / 10000).
func ProtocolFeeAmount(s State, amount uint64) uint64 {
	return feeAmount(amount, s.ProtocolFeeRateBasisPoints())
}

// ProvidersFeeAmount returns floor(amount · providers rate / 10000).
func ProvidersFeeAmount(s State, amount uint64) uint64 {
	return feeAmount(amount, s.ProvidersFeeRateBasisPoints())
}

// feeAmount clamps the rate to FeeMaxBasisPoints so the fee never exceeds
// amount.
func feeAmount(amount uint64, rateBasisPoints uint16) uint64 {
	rate := uint64(rateBasisPoints)
	if rate > FeeMaxBasisPoints {
		rate = FeeMaxBasisPoints
	}
	fee := new(uint256.Int).Mul(uint256.NewInt(amount), uint256.NewInt(rate))
	return fee.Div(fee, uint256.NewInt(FeeMaxBasisPoints)).Uint64()
}

// CheckSwapResult fails when result is zero or deviates from estimate by
// more than allowedSlippage.
func CheckSwapResult(result, estimate, allowedSlippage uint64) error {
	if result == 0 {
		return ErrSwapResultIsZero
	}
	diff := result - estimate
	if estimate > result {
		diff = estimate - result
	}
	if diff > allowedSlippage {
		return ErrSwapSlippageExceeded
	}
	return nil
}

// BaseQuoteRatio returns base/quote. It reports false for zero reserves or
// when the ratio underflows to zero.
func BaseQuoteRatio(base, quote uint64) (fixedpoint.Q64, bool) {
	if base == 0 || quote == 0 {
		return fixedpoint.Zero, false
	}
	ratio := fixedpoint.FromUint64(base).Div(fixedpoint.FromUint64(quote))
	if ratio.IsZero() {
		return fixedpoint.Zero, false
	}
	return ratio, true
}

// ConstantProductSqrt returns sqrt(base·quote).
func ConstantProductSqrt(base, quote uint64) (fixedpoint.Q64, bool) {
	if base == 0 || quote == 0 {
		return fixedpoint.Zero, false
	}
	product := new(uint256.Int).Mul(uint256.NewInt(base), uint256.NewInt(quote))
	sqrt := fixedpoint.Sqrt(product)
	if sqrt.IsZero() {
		return fixedpoint.Zero, false
	}
	return sqrt, true
}
