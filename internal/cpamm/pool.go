package cpamm

import (
	gmath "github.com/ethereum/go-ethereum/common/math"

	"cpmm/internal/fixedpoint"
)

// Pool is an in-memory constant-product pool. It implements State and turns
// requests into payloads; the payloads are only applied when the caller
// commits them after the token movements succeed.
type Pool struct {
	launched               bool
	initialLockedLiquidity uint64
	constantProductSqrt    fixedpoint.Q64
	baseQuoteRatio         fixedpoint.Q64
	baseLiquidity          uint64
	quoteLiquidity         uint64
	lpTokensSupply         uint64

	providersFeeRateBasisPoints uint16
	protocolFeeRateBasisPoints  uint16

	protocolBaseFeesToRedeem  uint64
	protocolQuoteFeesToRedeem uint64
}

// NewPool returns an unlaunched pool with the given fee rates.
func NewPool(providersFeeRateBasisPoints, protocolFeeRateBasisPoints uint16) (*Pool, error) {
	if err := validateFeeRates(providersFeeRateBasisPoints, protocolFeeRateBasisPoints); err != nil {
		return nil, err
	}
	return &Pool{
		providersFeeRateBasisPoints: providersFeeRateBasisPoints,
		protocolFeeRateBasisPoints:  protocolFeeRateBasisPoints,
	}, nil
}

func validateFeeRates(providers, protocol uint16) error {
	if uint32(providers)+uint32(protocol) > FeeMaxBasisPoints {
		return ErrInvalidFeeRate
	}
	return nil
}

func (p *Pool) ConstantProductSqrt() fixedpoint.Q64 { return p.constantProductSqrt }
func (p *Pool) BaseQuoteRatio() fixedpoint.Q64 { return p.baseQuoteRatio }
func (p *Pool) BaseLiquidity() uint64 { return p.baseLiquidity }
func (p *Pool) QuoteLiquidity() uint64 { return p.quoteLiquidity }
func (p *Pool) LpTokensSupply() uint64 { return p.lpTokensSupply }
func (p *Pool) ProvidersFeeRateBasisPoints() uint16 { return p.providersFeeRateBasisPoints }
func (p *Pool) ProtocolFeeRateBasisPoints() uint16 { return p.protocolFeeRateBasisPoints }
func (p *Pool) IsLaunched() bool { return p.launched }
func (p *Pool) InitialLockedLiquidity() uint64 { return p.initialLockedLiquidity }
func (p *Pool) ProtocolBaseFeesToRedeem() uint64 { return p.protocolBaseFeesToRedeem }
func (p *Pool) ProtocolQuoteFeesToRedeem() uint64 { return p.protocolQuoteFeesToRedeem }

// LaunchPayload computes the initial state for launching the pool with the
// given (post-transfer-fee) reserves.
func (p *Pool) LaunchPayload(base, quote uint64) (LaunchPayload, error) {
	if p.launched {
		return LaunchPayload{}, ErrPoolAlreadyLaunched
	}
	sqrt, ok := ConstantProductSqrt(base, quote)
	if !ok {
		return LaunchPayload{}, ErrConstantProductCalculationFailed
	}
	ratio, ok := BaseQuoteRatio(base, quote)
	if !ok {
		return LaunchPayload{}, ErrBaseQuoteRatioCalculationFailed
	}
	supply, launcher, err := LaunchLpTokens(sqrt)
	if err != nil {
		return LaunchPayload{}, err
	}
	return LaunchPayload{
		BaseLiquidity:          base,
		QuoteLiquidity:         quote,
		ConstantProductSqrt:    sqrt,
		BaseQuoteRatio:         ratio,
		LpTokensSupply:         supply,
		LauncherLpTokens:       launcher,
		InitialLockedLiquidity: supply - launcher,
	}, nil
}

// Launch commits a launch payload.
func (p *Pool) Launch(payload LaunchPayload) {
	p.launched = true
	p.initialLockedLiquidity = payload.InitialLockedLiquidity
	p.baseLiquidity = payload.BaseLiquidity
	p.quoteLiquidity = payload.QuoteLiquidity
	p.constantProductSqrt = payload.ConstantProductSqrt
	p.baseQuoteRatio = payload.BaseQuoteRatio
	p.lpTokensSupply = payload.LpTokensSupply
}

// ProvidePayload computes the lp tokens minted for adding base and quote.
// Both amounts must already be net of any transfer fee.
func (p *Pool) ProvidePayload(base, quote uint64) (ProvidePayload, error) {
	if !p.launched {
		return ProvidePayload{}, ErrPoolNotLaunched
	}
	newBase, overflowBase := gmath.SafeAdd(p.baseLiquidity, base)
	newQuote, overflowQuote := gmath.SafeAdd(p.quoteLiquidity, quote)
	if overflowBase || overflowQuote {
		return ProvidePayload{}, ErrConstantProductCalculationFailed
	}

	ratio, err := ValidateLiquidityRatio(p, newBase, newQuote)
	if err != nil {
		return ProvidePayload{}, err
	}
	sqrt, ok := ConstantProductSqrt(newBase, newQuote)
	if !ok {
		return ProvidePayload{}, ErrConstantProductCalculationFailed
	}
	minted, ok := LpMintForProvidedLiquidity(p, sqrt)
	if !ok {
		return ProvidePayload{}, ErrLpTokensCalculationFailed
	}
	supply, overflow := gmath.SafeAdd(p.lpTokensSupply, minted)
	if overflow {
		return ProvidePayload{}, ErrLpTokensCalculationFailed
	}

	return ProvidePayload{
		BaseProvided:        base,
		QuoteProvided:       quote,
		BaseLiquidity:       newBase,
		QuoteLiquidity:      newQuote,
		ConstantProductSqrt: sqrt,
		BaseQuoteRatio:      ratio,
		LpTokensToMint:      minted,
		LpTokensSupply:      supply,
	}, nil
}

// Provide commits a provide payload.
func (p *Pool) Provide(payload ProvidePayload) {
	p.baseLiquidity = payload.BaseLiquidity
	p.quoteLiquidity = payload.QuoteLiquidity
	p.constantProductSqrt = payload.ConstantProductSqrt
	p.baseQuoteRatio = payload.BaseQuoteRatio
	p.lpTokensSupply = payload.LpTokensSupply
}

// WithdrawPayload computes the reserves released for burning lpTokens. The
// initially locked supply can never be burned.
func (p *Pool) WithdrawPayload(lpTokens uint64) (WithdrawPayload, error) {
	if !p.launched {
		return WithdrawPayload{}, ErrPoolNotLaunched
	}
	if lpTokens > p.lpTokensSupply-p.initialLockedLiquidity {
		return WithdrawPayload{}, ErrLpTokensCalculationFailed
	}
	base, quote, ok := LiquidityFromShare(p, lpTokens)
	if !ok {
		return WithdrawPayload{}, ErrLpTokensCalculationFailed
	}
	newBase, underflowBase := gmath.SafeSub(p.baseLiquidity, base)
	newQuote, underflowQuote := gmath.SafeSub(p.quoteLiquidity, quote)
	if underflowBase || underflowQuote {
		return WithdrawPayload{}, ErrLpTokensCalculationFailed
	}

	ratio, err := ValidateLiquidityRatio(p, newBase, newQuote)
	if err != nil {
		return WithdrawPayload{}, err
	}
	sqrt, ok := ConstantProductSqrt(newBase, newQuote)
	if !ok {
		return WithdrawPayload{}, ErrConstantProductCalculationFailed
	}

	return WithdrawPayload{
		LpTokensToBurn:      lpTokens,
		BaseWithdrawAmount:  base,
		QuoteWithdrawAmount: quote,
		BaseLiquidity:       newBase,
		QuoteLiquidity:      newQuote,
		ConstantProductSqrt: sqrt,
		BaseQuoteRatio:      ratio,
		LpTokensSupply:      p.lpTokensSupply - lpTokens,
	}, nil
}

// Withdraw commits a withdraw payload.
func (p *Pool) Withdraw(payload WithdrawPayload) {
	p.baseLiquidity = payload.BaseLiquidity
	p.quoteLiquidity = payload.QuoteLiquidity
	p.constantProductSqrt = payload.ConstantProductSqrt
	p.baseQuoteRatio = payload.BaseQuoteRatio
	p.lpTokensSupply = payload.LpTokensSupply
}

// QuoteSwap computes a swap of amountIn without a slippage bound. amountIn
// must already be net of any transfer fee.
//
// Protocol and providers fees are taken from amountIn first. The remainder
// moves the invariant; the providers fee is then added to the input reserve
// and the protocol fee is set aside for redemption.
func (p *Pool) QuoteSwap(amountIn uint64, dir Direction) (SwapPayload, error) {
	if !p.launched {
		return SwapPayload{}, ErrPoolNotLaunched
	}
	if dir != BaseIn && dir != QuoteIn {
		return SwapPayload{}, ErrInvalidDirection
	}
	protocolFee := ProtocolFeeAmount(p, amountIn)
	providersFee := ProvidersFeeAmount(p, amountIn)
	afterFees := amountIn - protocolFee - providersFee

	newBase, newQuote, ok := AfterswapLiquidity(p, afterFees, dir)
	if !ok {
		return SwapPayload{}, ErrConstantProductCalculationFailed
	}

	var amountOut uint64
	var underflow bool
	if dir == BaseIn {
		amountOut, underflow = gmath.SafeSub(p.quoteLiquidity, newQuote)
	} else {
		amountOut, underflow = gmath.SafeSub(p.baseLiquidity, newBase)
	}
	if underflow || amountOut == 0 {
		return SwapPayload{}, ErrSwapResultIsZero
	}

	if err := ValidateSwapConstantProduct(p, newBase, newQuote); err != nil {
		return SwapPayload{}, err
	}

	var overflow bool
	if dir == BaseIn {
		newBase, overflow = gmath.SafeAdd(newBase, providersFee)
	} else {
		newQuote, overflow = gmath.SafeAdd(newQuote, providersFee)
	}
	if overflow {
		return SwapPayload{}, ErrConstantProductCalculationFailed
	}
	sqrt, ok := ConstantProductSqrt(newBase, newQuote)
	if !ok {
		return SwapPayload{}, ErrConstantProductCalculationFailed
	}
	ratio, ok := BaseQuoteRatio(newBase, newQuote)
	if !ok {
		return SwapPayload{}, ErrBaseQuoteRatioCalculationFailed
	}

	return SwapPayload{
		Direction:           dir,
		AmountIn:            amountIn,
		AmountInAfterFees:   afterFees,
		AmountOut:           amountOut,
		ProtocolFee:         protocolFee,
		ProvidersFee:        providersFee,
		BaseLiquidity:       newBase,
		QuoteLiquidity:      newQuote,
		ConstantProductSqrt: sqrt,
		BaseQuoteRatio:      ratio,
	}, nil
}

// SwapPayload is QuoteSwap bounded by the caller's estimate and slippage.
func (p *Pool) SwapPayload(amountIn, estimatedResult, allowedSlippage uint64, dir Direction) (SwapPayload, error) {
	payload, err := p.QuoteSwap(amountIn, dir)
	if err != nil {
		return SwapPayload{}, err
	}
	if err := CheckSwapResult(payload.AmountOut, estimatedResult, allowedSlippage); err != nil {
		return SwapPayload{}, err
	}
	return payload, nil
}

// Swap commits a swap payload and accrues the protocol fee on the input side.
func (p *Pool) Swap(payload SwapPayload) {
	p.baseLiquidity = payload.BaseLiquidity
	p.quoteLiquidity = payload.QuoteLiquidity
	p.constantProductSqrt = payload.ConstantProductSqrt
	p.baseQuoteRatio = payload.BaseQuoteRatio
	if payload.Direction == BaseIn {
		p.protocolBaseFeesToRedeem += payload.ProtocolFee
	} else {
		p.protocolQuoteFeesToRedeem += payload.ProtocolFee
	}
}

// RedeemProtocolFees returns the accrued protocol fees and resets them.
func (p *Pool) RedeemProtocolFees() (base, quote uint64) {
	base, quote = p.protocolBaseFeesToRedeem, p.protocolQuoteFeesToRedeem
	p.protocolBaseFeesToRedeem = 0
	p.protocolQuoteFeesToRedeem = 0
	return base, quote
}
