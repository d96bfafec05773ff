package transfer

import "errors"

var (
	ErrMintTransferFeeCalculationFailed = errors.New("mint transfer fee calculation failed")
	ErrInsufficientBalance              = errors.New("insufficient balance")
)
