// Package engine executes pool operations against persisted state. Each
// operation reads the latest snapshot, charges mint transfer fees, asks the
// calculator for a payload and only then commits the new snapshot and a
// journal record.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"cpmm/internal/cpamm"
	"cpmm/internal/model"
	"cpmm/internal/storage"
	"cpmm/internal/transfer"
)

// Config holds runtime settings for the engine.
type Config struct {
	MaxRetries       int
	RetryBackoff     time.Duration
	BaseTransferFee  *transfer.FeeConfig
	QuoteTransferFee *transfer.FeeConfig
}

// Engine serialises operations on the pools it manages.
type Engine struct {
	cfg       Config
	snapshots storage.SnapshotStore
	journal   storage.Journal
	logger    *zap.Logger
	now       func() time.Time

	mu sync.Mutex
}

// New builds an Engine with its dependencies.
func New(cfg Config, snapshots storage.SnapshotStore, journal storage.Journal, logger *zap.Logger) (*Engine, error) {
	if snapshots == nil || journal == nil {
		return nil, ErrMissingStorage
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		cfg:       cfg,
		snapshots: snapshots,
		journal:   journal,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// Launch creates the pool and seeds it with the post-fee amounts.
func (e *Engine) Launch(ctx context.Context, req LaunchRequest) (LaunchResult, error) {
	if req.PoolID == "" {
		return LaunchResult{}, ErrInvalidPoolID
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	snap, found, err := e.load(ctx, req.PoolID)
	if err != nil {
		return LaunchResult{}, err
	}
	var pool *cpamm.Pool
	if found {
		pool, err = cpamm.PoolFromSnapshot(snap)
	} else {
		pool, err = cpamm.NewPool(req.ProvidersFeeRateBasisPoints, req.ProtocolFeeRateBasisPoints)
	}
	if err != nil {
		return LaunchResult{}, err
	}

	baseIn, err := transfer.NewTransfer(req.BaseAmount, req.BaseBalance, e.cfg.BaseTransferFee)
	if err != nil {
		return LaunchResult{}, fmt.Errorf("base transfer: %w", err)
	}
	quoteIn, err := transfer.NewTransfer(req.QuoteAmount, req.QuoteBalance, e.cfg.QuoteTransferFee)
	if err != nil {
		return LaunchResult{}, fmt.Errorf("quote transfer: %w", err)
	}

	payload, err := pool.LaunchPayload(baseIn.AmountAfterFee(), quoteIn.AmountAfterFee())
	if err != nil {
		return LaunchResult{}, err
	}
	pool.Launch(payload)

	next, err := e.commit(ctx, req.PoolID, snap.Version, pool, model.OperationLaunch, payload)
	if err != nil {
		return LaunchResult{}, err
	}
	return LaunchResult{Pool: next, Payload: payload, BaseIn: legOf(baseIn), QuoteIn: legOf(quoteIn)}, nil
}

// Provide adds liquidity and mints lp tokens for the post-fee amounts.
func (e *Engine) Provide(ctx context.Context, req ProvideRequest) (ProvideResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pool, version, err := e.open(ctx, req.PoolID)
	if err != nil {
		return ProvideResult{}, err
	}

	baseIn, err := transfer.NewTransfer(req.BaseAmount, req.BaseBalance, e.cfg.BaseTransferFee)
	if err != nil {
		return ProvideResult{}, fmt.Errorf("base transfer: %w", err)
	}
	quoteIn, err := transfer.NewTransfer(req.QuoteAmount, req.QuoteBalance, e.cfg.QuoteTransferFee)
	if err != nil {
		return ProvideResult{}, fmt.Errorf("quote transfer: %w", err)
	}

	payload, err := pool.ProvidePayload(baseIn.AmountAfterFee(), quoteIn.AmountAfterFee())
	if err != nil {
		return ProvideResult{}, err
	}
	pool.Provide(payload)

	next, err := e.commit(ctx, req.PoolID, version, pool, model.OperationProvide, payload)
	if err != nil {
		return ProvideResult{}, err
	}
	return ProvideResult{Pool: next, Payload: payload, BaseIn: legOf(baseIn), QuoteIn: legOf(quoteIn)}, nil
}

// Withdraw burns lp tokens and releases the matching reserves. The mint
// transfer fee is charged on the way out.
func (e *Engine) Withdraw(ctx context.Context, req WithdrawRequest) (WithdrawResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pool, version, err := e.open(ctx, req.PoolID)
	if err != nil {
		return WithdrawResult{}, err
	}

	payload, err := pool.WithdrawPayload(req.LpTokens)
	if err != nil {
		return WithdrawResult{}, err
	}
	baseOut, err := transfer.NewTransfer(payload.BaseWithdrawAmount, pool.BaseLiquidity(), e.cfg.BaseTransferFee)
	if err != nil {
		return WithdrawResult{}, fmt.Errorf("base transfer: %w", err)
	}
	quoteOut, err := transfer.NewTransfer(payload.QuoteWithdrawAmount, pool.QuoteLiquidity(), e.cfg.QuoteTransferFee)
	if err != nil {
		return WithdrawResult{}, fmt.Errorf("quote transfer: %w", err)
	}
	pool.Withdraw(payload)

	next, err := e.commit(ctx, req.PoolID, version, pool, model.OperationWithdraw, payload)
	if err != nil {
		return WithdrawResult{}, err
	}
	return WithdrawResult{Pool: next, Payload: payload, BaseOut: legOf(baseOut), QuoteOut: legOf(quoteOut)}, nil
}

// Swap trades the post-fee input for the opposite side, bounded by the
// request's estimate and slippage.
func (e *Engine) Swap(ctx context.Context, req SwapRequest) (SwapResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pool, version, err := e.open(ctx, req.PoolID)
	if err != nil {
		return SwapResult{}, err
	}
	in, err := transfer.NewTransfer(req.Amount, req.Balance, e.inputFee(req.Direction))
	if err != nil {
		return SwapResult{}, fmt.Errorf("input transfer: %w", err)
	}
	payload, err := pool.SwapPayload(in.AmountAfterFee(), req.EstimatedResult, req.AllowedSlippage, req.Direction)
	if err != nil {
		return SwapResult{}, err
	}
	out, err := e.swapOutput(pool, payload)
	if err != nil {
		return SwapResult{}, err
	}
	pool.Swap(payload)

	next, err := e.commit(ctx, req.PoolID, version, pool, model.OperationSwap, payload)
	if err != nil {
		return SwapResult{}, err
	}
	return SwapResult{Pool: next, Payload: payload, In: legOf(in), Out: legOf(out)}, nil
}

// Quote prices a swap of amount without slippage bounds or committing.
func (e *Engine) Quote(ctx context.Context, poolID string, dir cpamm.Direction, amount uint64) (SwapResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pool, version, err := e.open(ctx, poolID)
	if err != nil {
		return SwapResult{}, err
	}
	in, err := transfer.NewTransfer(amount, amount, e.inputFee(dir))
	if err != nil {
		return SwapResult{}, fmt.Errorf("input transfer: %w", err)
	}
	payload, err := pool.QuoteSwap(in.AmountAfterFee(), dir)
	if err != nil {
		return SwapResult{}, err
	}
	out, err := e.swapOutput(pool, payload)
	if err != nil {
		return SwapResult{}, err
	}
	snap := pool.Snapshot(poolID)
	snap.Version = version
	return SwapResult{Pool: snap, Payload: payload, In: legOf(in), Out: legOf(out)}, nil
}

// RedeemFees pays out the accrued protocol fees. Nothing is committed when
// there is nothing to redeem.
func (e *Engine) RedeemFees(ctx context.Context, poolID string) (RedeemResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pool, version, err := e.open(ctx, poolID)
	if err != nil {
		return RedeemResult{}, err
	}
	base, quote := pool.RedeemProtocolFees()
	if base == 0 && quote == 0 {
		snap := pool.Snapshot(poolID)
		snap.Version = version
		return RedeemResult{Pool: snap}, nil
	}

	baseOut, err := transfer.NewTransfer(base, base, e.cfg.BaseTransferFee)
	if err != nil {
		return RedeemResult{}, fmt.Errorf("base transfer: %w", err)
	}
	quoteOut, err := transfer.NewTransfer(quote, quote, e.cfg.QuoteTransferFee)
	if err != nil {
		return RedeemResult{}, fmt.Errorf("quote transfer: %w", err)
	}

	redemption := model.FeeRedemption{BaseAmount: base, QuoteAmount: quote}
	next, err := e.commit(ctx, poolID, version, pool, model.OperationRedeemFees, redemption)
	if err != nil {
		return RedeemResult{}, err
	}
	return RedeemResult{Pool: next, BaseOut: legOf(baseOut), QuoteOut: legOf(quoteOut)}, nil
}

// Show returns the latest snapshot of poolID.
func (e *Engine) Show(ctx context.Context, poolID string) (model.PoolSnapshot, error) {
	if poolID == "" {
		return model.PoolSnapshot{}, ErrInvalidPoolID
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	snap, found, err := e.load(ctx, poolID)
	if err != nil {
		return model.PoolSnapshot{}, err
	}
	if !found {
		return model.PoolSnapshot{}, fmt.Errorf("%w: %s", ErrPoolNotFound, poolID)
	}
	return snap, nil
}

// History returns the journal records of poolID, or of every pool when
// poolID is empty.
func (e *Engine) History(ctx context.Context, poolID string) ([]model.OperationRecordRaw, error) {
	var out []model.OperationRecordRaw
	err := withRetry(ctx, e.cfg.MaxRetries, e.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		out, err = e.journal.History(ctx, poolID)
		if err != nil {
			e.logger.Warn("read journal failed", zap.Error(err), zap.String("pool_id", poolID))
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	return out, nil
}

func (e *Engine) inputFee(dir cpamm.Direction) *transfer.FeeConfig {
	if dir == cpamm.QuoteIn {
		return e.cfg.QuoteTransferFee
	}
	return e.cfg.BaseTransferFee
}

func (e *Engine) swapOutput(pool *cpamm.Pool, payload cpamm.SwapPayload) (transfer.Transfer, error) {
	balance, fee := pool.QuoteLiquidity(), e.cfg.QuoteTransferFee
	if payload.Direction == cpamm.QuoteIn {
		balance, fee = pool.BaseLiquidity(), e.cfg.BaseTransferFee
	}
	out, err := transfer.NewTransfer(payload.AmountOut, balance, fee)
	if err != nil {
		return transfer.Transfer{}, fmt.Errorf("output transfer: %w", err)
	}
	return out, nil
}

func (e *Engine) open(ctx context.Context, poolID string) (*cpamm.Pool, uint64, error) {
	if poolID == "" {
		return nil, 0, ErrInvalidPoolID
	}
	snap, found, err := e.load(ctx, poolID)
	if err != nil {
		return nil, 0, err
	}
	if !found {
		return nil, 0, fmt.Errorf("%w: %s", ErrPoolNotFound, poolID)
	}
	pool, err := cpamm.PoolFromSnapshot(snap)
	if err != nil {
		return nil, 0, err
	}
	return pool, snap.Version, nil
}

func (e *Engine) load(ctx context.Context, poolID string) (model.PoolSnapshot, bool, error) {
	var (
		snap  model.PoolSnapshot
		found bool
	)
	err := withRetry(ctx, e.cfg.MaxRetries, e.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		snap, found, err = e.snapshots.Load(ctx, poolID)
		if err != nil {
			e.logger.Warn("load snapshot failed", zap.Error(err), zap.String("pool_id", poolID))
		}
		return err
	})
	if err != nil {
		return model.PoolSnapshot{}, false, fmt.Errorf("load snapshot: %w", err)
	}
	return snap, found, nil
}

// commit saves the pool as version+1 and journals the operation. A journal
// failure is reported after the snapshot is already durable.
func (e *Engine) commit(ctx context.Context, poolID string, version uint64, pool *cpamm.Pool, kind string, payload interface{}) (model.PoolSnapshot, error) {
	now := e.now().UTC().Format(time.RFC3339Nano)
	next := pool.Snapshot(poolID)
	next.Version = version + 1
	next.UpdatedAt = now

	err := withRetry(ctx, e.cfg.MaxRetries, e.cfg.RetryBackoff, func(ctx context.Context) error {
		err := e.snapshots.Save(ctx, next)
		if err != nil {
			e.logger.Warn("save snapshot failed", zap.Error(err), zap.String("pool_id", poolID), zap.Uint64("version", next.Version))
		}
		return err
	})
	if err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("save snapshot: %w", err)
	}

	rec := model.OperationRecord{
		PoolID:     poolID,
		Version:    next.Version,
		Kind:       kind,
		Payload:    payload,
		RecordedAt: now,
	}
	err = withRetry(ctx, e.cfg.MaxRetries, e.cfg.RetryBackoff, func(ctx context.Context) error {
		return e.journal.Append(ctx, rec)
	})
	if err != nil {
		e.logger.Error("journal append failed after commit", zap.Error(err), zap.String("pool_id", poolID), zap.String("kind", kind), zap.Uint64("version", next.Version))
		return next, fmt.Errorf("append journal: %w", err)
	}

	e.logger.Info("pool operation committed",
		zap.String("pool_id", poolID),
		zap.String("kind", kind),
		zap.Uint64("version", next.Version),
		zap.Uint64("base_liquidity", next.BaseLiquidity),
		zap.Uint64("quote_liquidity", next.QuoteLiquidity),
		zap.Uint64("lp_tokens_supply", next.LpTokensSupply),
		zap.Stringer("constant_product_sqrt", next.ConstantProductSqrt),
	)
	return next, nil
}
