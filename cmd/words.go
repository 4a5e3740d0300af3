package cmd

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/abhisek/levo/internal/api"
	"github.com/abhisek/levo/internal/service"
)

var wordStatuses = []string{"learning", "completed", "wrong"}

var wordsCmd = &cobra.Command{
	Use:   "words",
	Short: "List vocabulary words",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")
		if status != "" && !slices.Contains(wordStatuses, status) {
			return fmt.Errorf("invalid status %q: must be learning, completed or wrong", status)
		}
		chapter, _ := cmd.Flags().GetInt("chapter")
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := openApp(cmd, false)
		if err != nil {
			return err
		}
		defer closeApp(a)
		if err := requireSession(a); err != nil {
			return err
		}

		env, err := a.Services.Vocabulary.Words(cmd.Context(), service.WordQuery{
			Status:  status,
			Chapter: chapter,
			Limit:   limit,
		})
		if err != nil {
			return fmt.Errorf("load words: %s", api.Message(err))
		}

		out := cmd.OutOrStdout()
		tabs := env.Data.Tabs
		fmt.Fprintf(out, "All %d · Learning %d · Completed %d · Wrong %d\n",
			tabs.All, tabs.Learning, tabs.Completed, tabs.Wrong)
		if len(env.Data.Words) == 0 {
			fmt.Fprintln(out, "No words.")
			return nil
		}
		for _, w := range env.Data.Words {
			fmt.Fprintf(out, "  %-16s %-28s ✓%d ✗%d\n", w.Word, w.Meaning, w.CorrectCount, w.WrongCount)
		}
		return nil
	},
}

func init() {
	wordsCmd.Flags().String("status", "", "Filter by status: learning, completed or wrong")
	wordsCmd.Flags().Int("chapter", 0, "Only words from this chapter")
	wordsCmd.Flags().Int("limit", 20, "Maximum number of words")
}
