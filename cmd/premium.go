package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/abhisek/levo/internal/api"
	"github.com/abhisek/levo/internal/service"
)

var premiumCmd = &cobra.Command{
	Use:   "premium",
	Short: "Show the subscription status",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, false)
		if err != nil {
			return err
		}
		defer closeApp(a)
		if err := requireSession(a); err != nil {
			return err
		}

		info, err := a.RefreshSubscription(cmd.Context())
		if err != nil {
			return fmt.Errorf("load subscription: %s", api.Message(err))
		}
		printSubscription(cmd.OutOrStdout(), info)
		return nil
	},
}

var premiumSubscribeCmd = &cobra.Command{
	Use:       "subscribe <monthly|yearly>",
	Short:     "Activate a premium plan with a store receipt",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"monthly", "yearly"},
	RunE: func(cmd *cobra.Command, args []string) error {
		plan := args[0]
		if plan != "monthly" && plan != "yearly" {
			return fmt.Errorf("invalid plan %q: must be monthly or yearly", plan)
		}
		receipt, _ := cmd.Flags().GetString("receipt")
		if receipt == "" {
			return fmt.Errorf("--receipt is required")
		}
		platform, _ := cmd.Flags().GetString("platform")
		if platform != "apple" && platform != "google" {
			return fmt.Errorf("invalid platform %q: must be apple or google", platform)
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
		if _, err := a.Services.Subscription.Subscribe(ctx, plan, receipt, platform); err != nil {
			return fmt.Errorf("subscribe failed: %s", api.Message(err))
		}
		info, err := a.RefreshSubscription(ctx)
		if err != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "Subscribed to %s.\n", plan)
			return nil
		}
		printSubscription(cmd.OutOrStdout(), info)
		return nil
	},
}

var premiumCancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Cancel the premium subscription",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, false)
		if err != nil {
			return err
		}
		defer closeApp(a)
		if err := requireSession(a); err != nil {
			return err
		}

		if _, err := a.Services.Subscription.Cancel(cmd.Context()); err != nil {
			return fmt.Errorf("cancel failed: %s", api.Message(err))
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Subscription cancelled.")
		return nil
	},
}

func printSubscription(w io.Writer, info service.SubscriptionInfo) {
	if !info.IsPremium {
		fmt.Fprintln(w, "Plan:     free")
		return
	}
	fmt.Fprintf(w, "Plan:     %s (%s)\n", info.Plan, info.Status)
	if info.ExpiresAt != "" {
		fmt.Fprintf(w, "Renews:   %s\n", info.ExpiresAt)
	}
	fmt.Fprintln(w, "Hearts:   unlimited")
}

func init() {
	premiumSubscribeCmd.Flags().String("receipt", "", "Purchase receipt from the app store")
	premiumSubscribeCmd.Flags().String("platform", "apple", "Store platform: apple or google")
	premiumCmd.AddCommand(premiumSubscribeCmd)
	premiumCmd.AddCommand(premiumCancelCmd)
}
