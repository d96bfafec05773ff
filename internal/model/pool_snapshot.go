package model

import "cpmm/internal/fixedpoint"

// PoolSnapshot is the persisted state of one constant-product pool.
// Version grows by one with every committed operation.
type PoolSnapshot struct {
	PoolID                      string         `json:"pool_id"`
	Version                     uint64         `json:"version"`
	IsLaunched                  bool           `json:"is_launched"`
	InitialLockedLiquidity      uint64         `json:"initial_locked_liquidity"`
	ConstantProductSqrt         fixedpoint.Q64 `json:"constant_product_sqrt"`
	BaseQuoteRatio              fixedpoint.Q64 `json:"base_quote_ratio"`
	BaseLiquidity               uint64         `json:"base_liquidity"`
	QuoteLiquidity              uint64         `json:"quote_liquidity"`
	LpTokensSupply              uint64         `json:"lp_tokens_supply"`
	ProvidersFeeRateBasisPoints uint16         `json:"providers_fee_rate_basis_points"`
	ProtocolFeeRateBasisPoints  uint16         `json:"protocol_fee_rate_basis_points"`
	ProtocolBaseFeesToRedeem    uint64         `json:"protocol_base_fees_to_redeem"`
	ProtocolQuoteFeesToRedeem   uint64         `json:"protocol_quote_fees_to_redeem"`
	UpdatedAt                   string         `json:"updated_at"`
}
