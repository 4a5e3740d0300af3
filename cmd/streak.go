package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/levo/internal/api"
	"github.com/abhisek/levo/internal/shop"
)

var streakCmd = &cobra.Command{
	Use:   "streak",
	Short: "Show the daily streak",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, false)
		if err != nil {
			return err
		}
		defer closeApp(a)
		if err := requireSession(a); err != nil {
			return err
		}

		env, err := a.Services.Streak.Get(cmd.Context())
		if err != nil {
			return fmt.Errorf("load streak: %s", api.Message(err))
		}
		a.Streak.Set(env.Data)
		d := a.Streak.Data()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Streak:   %d day(s)  (best %d)\n", d.CurrentStreak, d.LongestStreak)
		if len(d.WeeklyRecord) > 0 {
			var days []string
			for _, day := range d.WeeklyRecord {
				mark := "·"
				if day.Completed {
					mark = "✓"
				}
				days = append(days, day.Day+" "+mark)
			}
			fmt.Fprintf(out, "Week:     %s\n", strings.Join(days, "  "))
		}
		fmt.Fprintf(out, "Next:     %d days (%d to go)\n", d.NextMilestone.Target, d.NextMilestone.Remaining)
		fmt.Fprintf(out, "Shields:  %d\n", d.StreakShields)
		switch {
		case d.TodayCompleted:
			fmt.Fprintln(out, "Today's practice is done.")
		case d.IsInDanger:
			fmt.Fprintf(out, "In danger: resets in %dh.\n", d.HoursUntilReset)
		}
		return nil
	},
}

var streakShieldCmd = &cobra.Command{
	Use:   "shield",
	Short: "Spend a streak shield to protect today's streak",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, false)
		if err != nil {
			return err
		}
		defer closeApp(a)
		if err := requireSession(a); err != nil {
			return err
		}

		ctx := cmd.Context()
		env, err := a.Services.Streak.Get(ctx)
		if err != nil {
			return fmt.Errorf("load streak: %s", api.Message(err))
		}
		a.Streak.Set(env.Data)

		if err := a.Shop.UseShield(ctx); err != nil {
			if errors.Is(err, shop.ErrNoShield) {
				return fmt.Errorf("%w: the streak must be in danger and a shield in stock", err)
			}
			return fmt.Errorf("shield failed: %s", api.Message(err))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Shield used. %d left.\n", a.Streak.Data().StreakShields)
		return nil
	},
}

func init() {
	streakCmd.AddCommand(streakShieldCmd)
}
