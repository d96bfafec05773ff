package cpamm

import "cpmm/internal/fixedpoint"

// LaunchPayload carries the initial pool state computed for a launch.
type LaunchPayload struct {
	BaseLiquidity          uint64         `json:"base_liquidity"`
	QuoteLiquidity         uint64         `json:"quote_liquidity"`
	ConstantProductSqrt    fixedpoint.Q64 `json:"constant_product_sqrt"`
	BaseQuoteRatio         fixedpoint.Q64 `json:"base_quote_ratio"`
	LpTokensSupply         uint64         `json:"lp_tokens_supply"`
	LauncherLpTokens       uint64         `json:"launcher_lp_tokens"`
	InitialLockedLiquidity uint64         `json:"initial_locked_liquidity"`
}

// ProvidePayload is the outcome of adding liquidity. BaseLiquidity and
// QuoteLiquidity are the new reserves, not the provided amounts.
type ProvidePayload struct {
	BaseProvided        uint64         `json:"base_provided"`
	QuoteProvided       uint64         `json:"quote_provided"`
	BaseLiquidity       uint64         `json:"base_liquidity"`
	QuoteLiquidity      uint64         `json:"quote_liquidity"`
	ConstantProductSqrt fixedpoint.Q64 `json:"constant_product_sqrt"`
	BaseQuoteRatio      fixedpoint.Q64 `json:"base_quote_ratio"`
	LpTokensToMint      uint64         `json:"lp_tokens_to_mint"`
	LpTokensSupply      uint64         `json:"lp_tokens_supply"`
}

// WithdrawPayload is the outcome of redeeming lp tokens.
type WithdrawPayload struct {
	LpTokensToBurn      uint64         `json:"lp_tokens_to_burn"`
	BaseWithdrawAmount  uint64         `json:"base_withdraw_amount"`
	QuoteWithdrawAmount uint64         `json:"quote_withdraw_amount"`
	BaseLiquidity       uint64         `json:"base_liquidity"`
	QuoteLiquidity      uint64         `json:"quote_liquidity"`
	ConstantProductSqrt fixedpoint.Q64 `json:"constant_product_sqrt"`
	BaseQuoteRatio      fixedpoint.Q64 `json:"base_quote_ratio"`
	LpTokensSupply      uint64         `json:"lp_tokens_supply"`
}

// SwapPayload is the outcome of a swap. AmountIn is the post-transfer-fee
// amount received by the pool; AmountInAfterFees is what entered the
// invariant after protocol and providers fees.
type SwapPayload struct {
	Direction           Direction      `json:"direction"`
	AmountIn            uint64         `json:"amount_in"`
	AmountInAfterFees   uint64         `json:"amount_in_after_fees"`
	AmountOut           uint64         `json:"amount_out"`
	ProtocolFee         uint64         `json:"protocol_fee"`
	ProvidersFee        uint64         `json:"providers_fee"`
	BaseLiquidity       uint64         `json:"base_liquidity"`
	QuoteLiquidity      uint64         `json:"quote_liquidity"`
	ConstantProductSqrt fixedpoint.Q64 `json:"constant_product_sqrt"`
	BaseQuoteRatio      fixedpoint.Q64 `json:"base_quote_ratio"`
}
