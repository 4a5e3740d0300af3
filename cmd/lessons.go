package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/levo/internal/api"
	"github.com/abhisek/levo/internal/service"
)

var lessonsCmd = &cobra.Command{
	Use:   "lessons",
	Short: "List the lesson map",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, false)
		if err != nil {
			return err
		}
		defer closeApp(a)
		if err := requireSession(a); err != nil {
			return err
		}

		env, err := a.Services.Lessons.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("load lessons: %s", api.Message(err))
		}

		out := cmd.OutOrStdout()
		if len(env.Data.Units) == 0 {
			fmt.Fprintln(out, "No lessons yet.")
			return nil
		}
		for _, u := range env.Data.Units {
			fmt.Fprintf(out, "Unit %d · %s\n", u.UnitNumber, u.UnitTitle)
			for _, l := range u.Lessons {
				fmt.Fprintf(out, "  %s %s\n", lessonMark(l.Status), l.Name)
			}
		}
		return nil
	},
}

func lessonMark(status string) string {
	switch status {
	case service.LessonCompleted:
		return "✓"
	case service.LessonCurrent:
		return "▶"
	default:
		return "🔒"
	}
}

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Show what is due for review",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, false)
		if err != nil {
			return err
		}
		defer closeApp(a)
		if err := requireSession(a); err != nil {
			return err
		}

		env, err := a.Services.Review.Dashboard(cmd.Context())
		if err != nil {
			return fmt.Errorf("load review: %s", api.Message(err))
		}

		out := cmd.OutOrStdout()
		d := env.Data
		fmt.Fprintf(out, "%d items to review\n", d.TotalReviewItems)
		if len(d.Categories) == 0 {
			fmt.Fprintln(out, "All caught up!")
			return nil
		}
		for _, c := range d.Categories {
			fmt.Fprintf(out, "  %-14s %3d  %-11s %3d%%  next %s\n", c.Name, c.Count, c.Priority, c.Accuracy, c.NextReview)
		}
		return nil
	},
}
