package cpamm

import "errors"

// Calculation failures. Each one maps to a single violated precondition or
// invariant and is returned unchanged to the caller.
var (
	ErrLpTokensCalculationFailed        = errors.New("lp tokens calculation failed")
	ErrLaunchLiquidityTooSmall          = errors.New("launch liquidity too small")
	ErrBaseQuoteRatioCalculationFailed  = errors.New("base quote ratio calculation failed")
	ErrConstantProductCalculationFailed = errors.New("constant product calculation failed")
	ErrLiquidityRatioToleranceExceeded  = errors.New("liquidity ratio tolerance exceeded")
	ErrConstantProductToleranceExceeded = errors.New("constant product tolerance exceeded")
	ErrSwapResultIsZero                 = errors.New("swap result is zero")
	ErrSwapSlippageExceeded             = errors.New("swap slippage exceeded")
)

// Pool state guards.
var (
	ErrPoolNotLaunched     = errors.New("pool is not launched")
	ErrPoolAlreadyLaunched = errors.New("pool is already launched")
	ErrInvalidFeeRate      = errors.New("fee rates exceed 10000 basis points")
	ErrInvalidDirection    = errors.New("invalid swap direction")
)
