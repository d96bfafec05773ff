package engine

import (
	"cpmm/internal/cpamm"
	"cpmm/internal/model"
	"cpmm/internal/transfer"
)

// LaunchRequest opens a pool with its first reserves. Balances are the
// launcher's holdings the amounts are drawn from.
type LaunchRequest struct {
	PoolID                      string
	BaseAmount                  uint64
	QuoteAmount                 uint64
	BaseBalance                 uint64
	QuoteBalance                uint64
	ProvidersFeeRateBasisPoints uint16
	ProtocolFeeRateBasisPoints  uint16
}

type ProvideRequest struct {
	PoolID       string
	BaseAmount   uint64
	QuoteAmount  uint64
	BaseBalance  uint64
	QuoteBalance uint64
}

type WithdrawRequest struct {
	PoolID   string
	LpTokens uint64
}

// SwapRequest trades Amount of the input side selected by Direction.
// EstimatedResult and AllowedSlippage bound the pool-side output.
type SwapRequest struct {
	PoolID          string
	Direction       cpamm.Direction
	Amount          uint64
	Balance         uint64
	EstimatedResult uint64
	AllowedSlippage uint64
}

// Leg is one token movement after the mint's transfer fee.
type Leg struct {
	Amount   uint64 `json:"amount"`
	Fee      uint64 `json:"fee"`
	Received uint64 `json:"received"`
}

func legOf(t transfer.Transfer) Leg {
	return Leg{Amount: t.RawAmount(), Fee: t.Fee(), Received: t.AmountAfterFee()}
}

type LaunchResult struct {
	Pool    model.PoolSnapshot  `json:"pool"`
	Payload cpamm.LaunchPayload `json:"payload"`
	BaseIn  Leg                 `json:"base_in"`
	QuoteIn Leg                 `json:"quote_in"`
}

type ProvideResult struct {
	Pool    model.PoolSnapshot   `json:"pool"`
	Payload cpamm.ProvidePayload `json:"payload"`
	BaseIn  Leg                  `json:"base_in"`
	QuoteIn Leg                  `json:"quote_in"`
}

type WithdrawResult struct {
	Pool     model.PoolSnapshot    `json:"pool"`
	Payload  cpamm.WithdrawPayload `json:"payload"`
	BaseOut  Leg                   `json:"base_out"`
	QuoteOut Leg                   `json:"quote_out"`
}

type SwapResult struct {
	Pool    model.PoolSnapshot `json:"pool"`
	Payload cpamm.SwapPayload  `json:"payload"`
	In      Leg                `json:"in"`
	Out     Leg                `json:"out"`
}

type RedeemResult struct {
	Pool     model.PoolSnapshot `json:"pool"`
	BaseOut  Leg                `json:"base_out"`
	QuoteOut Leg                `json:"quote_out"`
}
