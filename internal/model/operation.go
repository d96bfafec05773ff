package model

import "encoding/json"

// Operation kinds recorded in the journal.
const (
	OperationLaunch     = "launch"
	OperationProvide    = "provide"
	OperationWithdraw   = "withdraw"
	OperationSwap       = "swap"
	OperationRedeemFees = "redeem_fees"
)

// OperationRecord is one committed pool operation.
type OperationRecord struct {
	PoolID     string      `json:"pool_id"`
	Version    uint64      `json:"version"`
	Kind       string      `json:"kind"`
	Payload    interface{} `json:"payload"`
	RecordedAt string      `json:"recorded_at"`
}

// OperationRecordRaw is OperationRecord as read back from a journal.
type OperationRecordRaw struct {
	PoolID     string          `json:"pool_id"`
	Version    uint64          `json:"version"`
	Kind       string          `json:"kind"`
	Payload    json.RawMessage `json:"payload"`
	RecordedAt string          `json:"recorded_at"`
}

// FeeRedemption is the payload of a redeem_fees operation.
type FeeRedemption struct {
	BaseAmount  uint64 `json:"base_amount"`
	QuoteAmount uint64 `json:"quote_amount"`
}
