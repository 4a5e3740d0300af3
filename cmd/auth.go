package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/levo/internal/api"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with the development login",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		name, _ := cmd.Flags().GetString("name")

		a, err := openApp(cmd, false)
		if err != nil {
			return err
		}
		defer closeApp(a)

		if err := a.Login(cmd.Context(), email, name); err != nil {
			return fmt.Errorf("sign in failed: %s", api.Message(err))
		}
		u := a.Session.User()
		fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s <%s>\n", u.Name, u.Email)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the saved session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, false)
		if err != nil {
			return err
		}
		defer closeApp(a)

		if !a.Authenticated() {
			fmt.Fprintln(cmd.OutOrStdout(), "Not signed in.")
			return nil
		}
		a.Logout(cmd.Context())
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the signed-in user, hearts, coins and streak",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, false)
		if err != nil {
			return err
		}
		defer closeApp(a)

		out := cmd.OutOrStdout()
		if !a.Authenticated() {
			fmt.Fprintln(out, "Not signed in.")
			return nil
		}

		// Counters fall back to the saved session when the server is unreachable.
		if err := a.Sync(cmd.Context()); err != nil {
			if a.SessionLost(err) {
				return fmt.Errorf("session expired, sign in again")
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: could not refresh everything: %s\n", api.Message(err))
		}

		u := a.Session.User()
		hs := a.Hearts.State()
		ps := a.Progress.State()

		fmt.Fprintf(out, "User:    %s <%s>\n", u.Name, u.Email)
		if p := a.Session.Profile(); p != nil {
			fmt.Fprintf(out, "Course:  %s (%s)\n", p.TargetLanguage, p.Level)
		}
		fmt.Fprintf(out, "Level:   %d  (%d XP)\n", ps.UserLevel, ps.XP)
		fmt.Fprintf(out, "Hearts:  %s\n", heartsText(hs.Current, hs.Max, hs.Premium))
		fmt.Fprintf(out, "Coins:   %d\n", ps.Coins)
		fmt.Fprintf(out, "Streak:  %d day(s)\n", ps.StreakDays)
		return nil
	},
}

func heartsText(current, maxHearts int, premium bool) string {
	if premium {
		return "unlimited"
	}
	return fmt.Sprintf("%d/%d", current, maxHearts)
}

func init() {
	loginCmd.Flags().String("email", "", "Account email (required)")
	loginCmd.Flags().String("name", "", "Display name for a new account")
	_ = loginCmd.MarkFlagRequired("email")
}
