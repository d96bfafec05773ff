package main

import (
	"context"

	"github.com/spf13/cobra"

	"cpmm/internal/cpamm"
	"cpmm/internal/engine"
)

func newSwapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "swap <pool-id>",
		Short: "Swap one side of the pool for the other",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dirFlag, _ := cmd.Flags().GetString("direction")
			dir, err := cpamm.ParseDirection(dirFlag)
			if err != nil {
				return err
			}
			amount, _ := cmd.Flags().GetUint64("amount")
			balance, _ := cmd.Flags().GetUint64("balance")
			estimate, _ := cmd.Flags().GetUint64("estimate")
			slippage, _ := cmd.Flags().GetUint64("slippage")
			return runWithEngine(cmd, func(ctx context.Context, eng *engine.Engine) (interface{}, error) {
				return eng.Swap(ctx, engine.SwapRequest{
					PoolID:          args[0],
					Direction:       dir,
					Amount:          amount,
					Balance:         balanceOr(balance, amount),
					EstimatedResult: estimate,
					AllowedSlippage: slippage,
				})
			})
		},
	}
	cmd.Flags().String("direction", "base_in", "input side (base_in, quote_in)")
	cmd.Flags().Uint64("amount", 0, "input amount")
	cmd.Flags().Uint64("balance", 0, "trader balance of the input side, defaults to --amount")
	cmd.Flags().Uint64("estimate", 0, "expected output amount")
	cmd.Flags().Uint64("slippage", 0, "allowed deviation from --estimate")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("estimate")
	return cmd
}

func newQuoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote <pool-id>",
		Short: "Price a swap without executing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dirFlag, _ := cmd.Flags().GetString("direction")
			dir, err := cpamm.ParseDirection(dirFlag)
			if err != nil {
				return err
			}
			amount, _ := cmd.Flags().GetUint64("amount")
			return runWithEngine(cmd, func(ctx context.Context, eng *engine.Engine) (interface{}, error) {
				return eng.Quote(ctx, args[0], dir, amount)
			})
		},
	}
	cmd.Flags().String("direction", "base_in", "input side (base_in, quote_in)")
	cmd.Flags().Uint64("amount", 0, "input amount")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}
