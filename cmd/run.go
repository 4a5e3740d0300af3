package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/levo/internal/tui"
)

// runApp builds the App and launches the TUI.
func runApp(cmd *cobra.Command) error {
	a, err := openApp(cmd, true)
	if err != nil {
		return err
	}
	defer closeApp(a)

	return tui.Run(a)
}
