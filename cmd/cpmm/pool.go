package main

import (
	"context"

	"github.com/spf13/cobra"

	"cpmm/internal/engine"
)

func newLaunchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "launch <pool-id>",
		Short: "Launch a pool with its initial reserves",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, _ := cmd.Flags().GetUint64("base")
			quote, _ := cmd.Flags().GetUint64("quote")
			baseBalance, _ := cmd.Flags().GetUint64("base-balance")
			quoteBalance, _ := cmd.Flags().GetUint64("quote-balance")
			providers, _ := cmd.Flags().GetUint16("providers-fee-bps")
			protocol, _ := cmd.Flags().GetUint16("protocol-fee-bps")
			return runWithEngine(cmd, func(ctx context.Context, eng *engine.Engine) (interface{}, error) {
				return eng.Launch(ctx, engine.LaunchRequest{
					PoolID:                      args[0],
					BaseAmount:                  base,
					QuoteAmount:                 quote,
					BaseBalance:                 balanceOr(baseBalance, base),
					QuoteBalance:                balanceOr(quoteBalance, quote),
					ProvidersFeeRateBasisPoints: providers,
					ProtocolFeeRateBasisPoints:  protocol,
				})
			})
		},
	}
	cmd.Flags().Uint64("base", 0, "base amount to deposit")
	cmd.Flags().Uint64("quote", 0, "quote amount to deposit")
	cmd.Flags().Uint64("base-balance", 0, "launcher base balance, defaults to --base")
	cmd.Flags().Uint64("quote-balance", 0, "launcher quote balance, defaults to --quote")
	cmd.Flags().Uint16("providers-fee-bps", 0, "swap fee paid to liquidity providers")
	cmd.Flags().Uint16("protocol-fee-bps", 0, "swap fee set aside for the protocol")
	_ = cmd.MarkFlagRequired("base")
	_ = cmd.MarkFlagRequired("quote")
	return cmd
}

func newProvideCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "provide <pool-id>",
		Short: "Add liquidity and mint lp tokens",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, _ := cmd.Flags().GetUint64("base")
			quote, _ := cmd.Flags().GetUint64("quote")
			baseBalance, _ := cmd.Flags().GetUint64("base-balance")
			quoteBalance, _ := cmd.Flags().GetUint64("quote-balance")
			return runWithEngine(cmd, func(ctx context.Context, eng *engine.Engine) (interface{}, error) {
				return eng.Provide(ctx, engine.ProvideRequest{
					PoolID:       args[0],
					BaseAmount:   base,
					QuoteAmount:  quote,
					BaseBalance:  balanceOr(baseBalance, base),
					QuoteBalance: balanceOr(quoteBalance, quote),
				})
			})
		},
	}
	cmd.Flags().Uint64("base", 0, "base amount to deposit")
	cmd.Flags().Uint64("quote", 0, "quote amount to deposit")
	cmd.Flags().Uint64("base-balance", 0, "provider base balance, defaults to --base")
	cmd.Flags().Uint64("quote-balance", 0, "provider quote balance, defaults to --quote")
	_ = cmd.MarkFlagRequired("base")
	_ = cmd.MarkFlagRequired("quote")
	return cmd
}

func newWithdrawCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "withdraw <pool-id>",
		Short: "Burn lp tokens and withdraw reserves",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lp, _ := cmd.Flags().GetUint64("lp")
			return runWithEngine(cmd, func(ctx context.Context, eng *engine.Engine) (interface{}, error) {
				return eng.Withdraw(ctx, engine.WithdrawRequest{PoolID: args[0], LpTokens: lp})
			})
		},
	}
	cmd.Flags().Uint64("lp", 0, "lp tokens to burn")
	_ = cmd.MarkFlagRequired("lp")
	return cmd
}

func newRedeemFeesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "redeem-fees <pool-id>",
		Short: "Pay out accrued protocol fees",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithEngine(cmd, func(ctx context.Context, eng *engine.Engine) (interface{}, error) {
				return eng.RedeemFees(ctx, args[0])
			})
		},
	}
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <pool-id>",
		Short: "Print the latest pool snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithEngine(cmd, func(ctx context.Context, eng *engine.Engine) (interface{}, error) {
				return eng.Show(ctx, args[0])
			})
		},
	}
}

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history [pool-id]",
		Short: "Print journaled operations",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			poolID := ""
			if len(args) == 1 {
				poolID = args[0]
			}
			return runWithEngine(cmd, func(ctx context.Context, eng *engine.Engine) (interface{}, error) {
				return eng.History(ctx, poolID)
			})
		},
	}
}

func balanceOr(balance, amount uint64) uint64 {
	if balance == 0 {
		return amount
	}
	return balance
}
