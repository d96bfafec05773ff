package cpamm

import (
	"fmt"

	"cpmm/internal/model"
)

// Snapshot copies the pool state into a model.PoolSnapshot. Version and
// UpdatedAt are left to the caller.
func (p *Pool) Snapshot(poolID string) model.PoolSnapshot {
	return model.PoolSnapshot{
		PoolID:                      poolID,
		IsLaunched:                  p.launched,
		InitialLockedLiquidity:      p.initialLockedLiquidity,
		ConstantProductSqrt:         p.constantProductSqrt,
		BaseQuoteRatio:              p.baseQuoteRatio,
		BaseLiquidity:               p.baseLiquidity,
		QuoteLiquidity:              p.quoteLiquidity,
		LpTokensSupply:              p.lpTokensSupply,
		ProvidersFeeRateBasisPoints: p.providersFeeRateBasisPoints,
		ProtocolFeeRateBasisPoints:  p.protocolFeeRateBasisPoints,
		ProtocolBaseFeesToRedeem:    p.protocolBaseFeesToRedeem,
		ProtocolQuoteFeesToRedeem:   p.protocolQuoteFeesToRedeem,
	}
}

// PoolFromSnapshot rebuilds a Pool from persisted state.
func PoolFromSnapshot(s model.PoolSnapshot) (*Pool, error) {
	if err := validateFeeRates(s.ProvidersFeeRateBasisPoints, s.ProtocolFeeRateBasisPoints); err != nil {
		return nil, fmt.Errorf("pool %s: %w", s.PoolID, err)
	}
	if s.IsLaunched && s.LpTokensSupply < s.InitialLockedLiquidity {
		return nil, fmt.Errorf("pool %s: lp supply %d below locked liquidity %d", s.PoolID, s.LpTokensSupply, s.InitialLockedLiquidity)
	}
	return &Pool{
		launched:                    s.IsLaunched,
		initialLockedLiquidity:      s.InitialLockedLiquidity,
		constantProductSqrt:         s.ConstantProductSqrt,
		baseQuoteRatio:              s.BaseQuoteRatio,
		baseLiquidity:               s.BaseLiquidity,
		quoteLiquidity:              s.QuoteLiquidity,
		lpTokensSupply:              s.LpTokensSupply,
		providersFeeRateBasisPoints: s.ProvidersFeeRateBasisPoints,
		protocolFeeRateBasisPoints:  s.ProtocolFeeRateBasisPoints,
		protocolBaseFeesToRedeem:    s.ProtocolBaseFeesToRedeem,
		protocolQuoteFeesToRedeem:   s.ProtocolQuoteFeesToRedeem,
	}, nil
}
