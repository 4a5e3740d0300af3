package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/abhisek/levo/internal/api"
	"github.com/abhisek/levo/internal/hearts"
	"github.com/abhisek/levo/internal/service"
	"github.com/abhisek/levo/internal/shop"
)

// refillMethods maps CLI names to refill methods.
var refillMethods = map[string]string{
	"ad":     service.RefillAd,
	"single": service.RefillCoinSingle,
	"full":   service.RefillCoinFull,
}

var heartsCmd = &cobra.Command{
	Use:   "hearts",
	Short: "Show hearts and refill timers",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, false)
		if err != nil {
			return err
		}
		defer closeApp(a)
		if err := requireSession(a); err != nil {
			return err
		}

		env, err := a.Services.Hearts.Get(cmd.Context())
		if err != nil {
			return fmt.Errorf("load hearts: %s", api.Message(err))
		}
		a.Hearts.Apply(env.Data)
		printHearts(cmd.OutOrStdout(), env.Data)
		return nil
	},
}

var heartsRefillCmd = &cobra.Command{
	Use:       "refill <ad|single|full>",
	Short:     "Refill hearts by watching an ad or spending coins",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"ad", "single", "full"},
	RunE: func(cmd *cobra.Command, args []string) error {
		method, ok := refillMethods[args[0]]
		if !ok {
			return fmt.Errorf("invalid refill method %q: must be ad, single or full", args[0])
		}

		a, err := openApp(cmd, false)
		if err != nil {
			return err
		}
		defer closeApp(a)
		if err := requireSession(a); err != nil {
			return err
		}

		ctx := cmd.Context()
		if method == service.RefillCoinFull {
			if err := a.RefreshCoins(ctx); err != nil {
				return fmt.Errorf("load coins: %s", api.Message(err))
			}
			if a.Progress.State().Coins < fullRefillPrice() {
				return fmt.Errorf("%w: a full refill costs %d coins", shop.ErrInsufficientCoins, fullRefillPrice())
			}
		}

		if err := a.Shop.RefillHearts(ctx, method); err != nil {
			if errors.Is(err, shop.ErrInsufficientCoins) {
				return err
			}
			return fmt.Errorf("refill failed: %s", api.Message(err))
		}

		st := a.Hearts.State()
		fmt.Fprintf(cmd.OutOrStdout(), "Hearts refilled: %s\n", heartsText(st.Current, st.Max, st.Premium))
		return nil
	},
}

func fullRefillPrice() int {
	it, _ := shop.Lookup("heart_refill")
	return it.Price
}

func printHearts(w io.Writer, st hearts.Status) {
	fmt.Fprintf(w, "Hearts:  %s\n", heartsText(st.CurrentHearts, st.MaxHearts, st.IsPremium))
	if st.IsPremium || st.CurrentHearts >= st.MaxHearts {
		return
	}
	if st.TimeUntilNextRefill != "" {
		fmt.Fprintf(w, "Next:    %s\n", st.TimeUntilNextRefill)
	}
	if st.TimeUntilFullRefill != "" {
		fmt.Fprintf(w, "Full:    %s\n", st.TimeUntilFullRefill)
	}
}

func init() {
	heartsCmd.AddCommand(heartsRefillCmd)
}
