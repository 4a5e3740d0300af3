package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/abhisek/levo/internal/api"
	"github.com/abhisek/levo/internal/service"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show learning statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		period, _ := cmd.Flags().GetString("period")
		switch period {
		case service.PeriodWeek, service.PeriodMonth, service.PeriodAll:
		default:
			return fmt.Errorf("invalid period %q: must be week, month or all", period)
		}
		client, _ := cmd.Flags().GetBool("client")

		a, err := openApp(cmd, false)
		if err != nil {
			return err
		}
		defer closeApp(a)
		if err := requireSession(a); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		env, err := a.Services.Stats.Get(cmd.Context(), period)
		if err != nil {
			return fmt.Errorf("load stats: %s", api.Message(err))
		}
		r := env.Data
		fmt.Fprintf(out, "Period:    %s\n", period)
		fmt.Fprintf(out, "XP:        %d\n", r.TotalXP)
		fmt.Fprintf(out, "Minutes:   %d\n", r.TotalMinutes)
		fmt.Fprintf(out, "Lessons:   %d\n", r.LessonsCompleted)
		fmt.Fprintf(out, "Words:     %d\n", r.WordsLearned)
		fmt.Fprintf(out, "Accuracy:  %d%%\n", r.Accuracy)

		if client {
			fmt.Fprintln(out)
			return printMetrics(out, a.Registry)
		}
		return nil
	},
}

// printMetrics writes the client's own request metrics, one sample per line.
func printMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	fmt.Fprintln(w, "Client metrics:")
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var labels []string
			for _, lp := range m.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
			}
			sort.Strings(labels)
			name := mf.GetName()
			if len(labels) > 0 {
				name += "{" + strings.Join(labels, ",") + "}"
			}

			switch {
			case m.GetCounter() != nil:
				fmt.Fprintf(w, "  %s %g\n", name, m.GetCounter().GetValue())
			case m.GetGauge() != nil:
				fmt.Fprintf(w, "  %s %g\n", name, m.GetGauge().GetValue())
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				fmt.Fprintf(w, "  %s count=%d sum=%.3fs\n", name, h.GetSampleCount(), h.GetSampleSum())
			}
		}
	}
	return nil
}

func init() {
	statsCmd.Flags().String("period", service.PeriodWeek, "Period: week, month or all")
	statsCmd.Flags().Bool("client", false, "Also print this client's API metrics")
}
