package cpamm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cpmm/internal/fixedpoint"
)

func launchedPool(t *testing.T, base, quote uint64, providers, protocol uint16) *Pool {
	t.Helper()
	p, err := NewPool(providers, protocol)
	require.NoError(t, err)
	payload, err := p.LaunchPayload(base, quote)
	require.NoError(t, err)
	p.Launch(payload)
	return p
}

func TestNewPoolFeeRates(t *testing.T) {
	_, err := NewPool(9_000, 1_000)
	assert.NoError(t, err)
	_, err = NewPool(9_000, 1_001)
	assert.ErrorIs(t, err, ErrInvalidFeeRate)
}

func TestPoolLaunch(t *testing.T) {
	p, err := NewPool(25, 5)
	require.NoError(t, err)

	_, err = p.ProvidePayload(1, 1)
	assert.ErrorIs(t, err, ErrPoolNotLaunched)
	_, err = p.QuoteSwap(1, BaseIn)
	assert.ErrorIs(t, err, ErrPoolNotLaunched)

	_, err = p.LaunchPayload(1000, 1000)
	assert.ErrorIs(t, err, ErrLaunchLiquidityTooSmall)
	_, err = p.LaunchPayload(0, 1_000_000)
	assert.ErrorIs(t, err, ErrConstantProductCalculationFailed)

	payload, err := p.LaunchPayload(4_000_000, 1_000_000)
	require.NoError(t, err)
	assert.False(t, p.IsLaunched(), "payload must not mutate the pool")
	assert.Equal(t, uint64(2_000_000), payload.LpTokensSupply)
	assert.Equal(t, uint64(1_900_000), payload.LauncherLpTokens)
	assert.Equal(t, InitialLockedLiquidity, payload.InitialLockedLiquidity)
	assert.Equal(t, fixedpoint.FromUint64(4), payload.BaseQuoteRatio)

	p.Launch(payload)
	assert.True(t, p.IsLaunched())
	assert.Equal(t, uint64(4_000_000), p.BaseLiquidity())
	assert.Equal(t, uint64(1_000_000), p.QuoteLiquidity())
	assert.Equal(t, fixedpoint.FromUint64(2_000_000), p.ConstantProductSqrt())

	_, err = p.LaunchPayload(4_000_000, 1_000_000)
	assert.ErrorIs(t, err, ErrPoolAlreadyLaunched)
}

func TestPoolProvide(t *testing.T) {
	p := launchedPool(t, 4_000_000, 1_000_000, 0, 0)

	payload, err := p.ProvidePayload(400_000, 100_000)
	require.NoError(t, err)
	assert.Equal(t, uint64(199_999), payload.LpTokensToMint)
	assert.Equal(t, uint64(2_199_999), payload.LpTokensSupply)
	assert.Equal(t, uint64(4_400_000), payload.BaseLiquidity)
	assert.Equal(t, uint64(1_100_000), payload.QuoteLiquidity)
	assert.Equal(t, fixedpoint.FromUint64(2_200_000), payload.ConstantProductSqrt)

	p.Provide(payload)
	assert.Equal(t, uint64(2_199_999), p.LpTokensSupply())
	assert.Equal(t, uint64(4_400_000), p.BaseLiquidity())

	_, err = p.ProvidePayload(400_000, 110_000)
	assert.ErrorIs(t, err, ErrLiquidityRatioToleranceExceeded)

	_, err = p.ProvidePayload(0, 0)
	assert.ErrorIs(t, err, ErrLpTokensCalculationFailed)
}

func TestPoolWithdraw(t *testing.T) {
	p := launchedPool(t, 4_000_000, 1_000_000, 0, 0)

	_, err := p.WithdrawPayload(1_900_001)
	assert.ErrorIs(t, err, ErrLpTokensCalculationFailed, "locked supply cannot be burned")

	payload, err := p.WithdrawPayload(190_000)
	require.NoError(t, err)
	assert.Equal(t, uint64(379_999), payload.BaseWithdrawAmount)
	assert.Equal(t, uint64(94_999), payload.QuoteWithdrawAmount)
	assert.Equal(t, uint64(3_620_001), payload.BaseLiquidity)
	assert.Equal(t, uint64(905_001), payload.QuoteLiquidity)
	assert.Equal(t, uint64(1_810_000), payload.LpTokensSupply)
	assert.Equal(t, uint64(1_810_001), payload.ConstantProductSqrt.Uint64())

	p.Withdraw(payload)
	assert.Equal(t, uint64(1_810_000), p.LpTokensSupply())
	assert.Equal(t, uint64(905_001), p.QuoteLiquidity())

	_, err = p.WithdrawPayload(0)
	assert.ErrorIs(t, err, ErrLpTokensCalculationFailed)
}

func TestPoolSwap(t *testing.T) {
	const reserve = 1_000_000_000_000

	t.Run("base in", func(t *testing.T) {
		p := launchedPool(t, reserve, reserve, 25, 5)
		sqrtBefore := p.ConstantProductSqrt()

		payload, err := p.QuoteSwap(1_000_000_000, BaseIn)
		require.NoError(t, err)
		assert.Equal(t, uint64(500_000), payload.ProtocolFee)
		assert.Equal(t, uint64(2_500_000), payload.ProvidersFee)
		assert.Equal(t, uint64(997_000_000), payload.AmountInAfterFees)
		assert.Equal(t, uint64(996_006_982), payload.AmountOut)
		assert.Equal(t, uint64(1_000_999_500_000), payload.BaseLiquidity)
		assert.Equal(t, uint64(999_003_993_018), payload.QuoteLiquidity)
		assert.Equal(t, 1, payload.ConstantProductSqrt.Cmp(sqrtBefore), "providers fee grows the product")

		p.Swap(payload)
		assert.Equal(t, uint64(500_000), p.ProtocolBaseFeesToRedeem())
		assert.Equal(t, uint64(0), p.ProtocolQuoteFeesToRedeem())
		assert.Equal(t, uint64(999_003_993_018), p.QuoteLiquidity())
	})

	t.Run("quote in", func(t *testing.T) {
		p := launchedPool(t, reserve, reserve, 25, 5)
		payload, err := p.QuoteSwap(1_000_000_000, QuoteIn)
		require.NoError(t, err)
		assert.Equal(t, uint64(996_006_982), payload.AmountOut)
		assert.Equal(t, uint64(999_003_993_018), payload.BaseLiquidity)
		assert.Equal(t, uint64(1_000_999_500_000), payload.QuoteLiquidity)

		p.Swap(payload)
		assert.Equal(t, uint64(500_000), p.ProtocolQuoteFeesToRedeem())

		base, quote := p.RedeemProtocolFees()
		assert.Equal(t, uint64(0), base)
		assert.Equal(t, uint64(500_000), quote)
		assert.Equal(t, uint64(0), p.ProtocolQuoteFeesToRedeem())
	})

	t.Run("slippage", func(t *testing.T) {
		p := launchedPool(t, reserve, reserve, 25, 5)
		_, err := p.SwapPayload(1_000_000_000, 996_000_000, 1_000, BaseIn)
		assert.ErrorIs(t, err, ErrSwapSlippageExceeded)

		payload, err := p.SwapPayload(1_000_000_000, 996_000_000, 10_000, BaseIn)
		require.NoError(t, err)
		assert.Equal(t, uint64(996_006_982), payload.AmountOut)
	})

	t.Run("zero input", func(t *testing.T) {
		p := launchedPool(t, reserve, reserve, 25, 5)
		_, err := p.QuoteSwap(0, BaseIn)
		assert.ErrorIs(t, err, ErrSwapResultIsZero)
	})

	t.Run("direction", func(t *testing.T) {
		p := launchedPool(t, reserve, reserve, 25, 5)
		_, err := p.QuoteSwap(1_000, Direction(3))
		assert.ErrorIs(t, err, ErrInvalidDirection)
	})

	t.Run("small pool rounding", func(t *testing.T) {
		p := launchedPool(t, 100_000_000, 10_000, 0, 0)
		_, err := p.QuoteSwap(1_000_000, BaseIn)
		assert.ErrorIs(t, err, ErrConstantProductToleranceExceeded)
	})
}

func TestPoolSnapshotRoundTrip(t *testing.T) {
	p := launchedPool(t, 1_000_000_000_000, 1_000_000_000_000, 25, 5)
	payload, err := p.QuoteSwap(1_000_000_000, BaseIn)
	require.NoError(t, err)
	p.Swap(payload)

	snap := p.Snapshot("pool-a")
	assert.Equal(t, "pool-a", snap.PoolID)

	restored, err := PoolFromSnapshot(snap)
	require.NoError(t, err)
	assert.Equal(t, p, restored)

	snap.ProtocolFeeRateBasisPoints = 10_000
	_, err = PoolFromSnapshot(snap)
	assert.ErrorIs(t, err, ErrInvalidFeeRate)

	snap.ProtocolFeeRateBasisPoints = 5
	snap.LpTokensSupply = 1
	_, err = PoolFromSnapshot(snap)
	assert.Error(t, err)
}
