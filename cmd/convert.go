package cmd

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/heroicdash/internal/contract"
	"github.com/spf13/cobra"
)

var fromUnits bool

type convertOutput struct {
	Input    string `json:"input"`
	Decimal  string `json:"decimal"`
	Units    string `json:"units"`
	Decimals int    `json:"decimals"`
}

var convertCmd = &cobra.Command{
	Use:   "convert <amount>",
	Short: "Convert between token amounts and on-chain units",
	Long: `Convert a decimal token amount to its 18-decimal on-chain integer, or back
with --from-units.

Examples:
  heroicdash convert 1.5
  heroicdash convert --from-units 1500000000000000000`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b := contract.New(nil)
		out := convertOutput{Input: args[0], Decimals: contract.Decimals}

		if fromUnits {
			raw, ok := new(big.Int).SetString(args[0], 10)
			if !ok || raw.Sign() < 0 {
				return fmt.Errorf("invalid unit amount %q", args[0])
			}
			out.Units = raw.String()
			out.Decimal = b.ToDecimalString(raw)
		} else {
			raw, err := b.ToFixedPoint(args[0])
			if errors.Is(err, contract.ErrConversion) {
				return fmt.Errorf("invalid amount %q", args[0])
			}
			if err != nil {
				return err
			}
			out.Units = raw.String()
			out.Decimal = args[0]
		}

		return emit(cmd.OutOrStdout(), out, func() string {
			if fromUnits {
				return out.Decimal
			}
			return out.Units
		})
	},
}

func init() {
	convertCmd.Flags().BoolVar(&fromUnits, "from-units", false, "convert an on-chain integer to a decimal amount")
}
