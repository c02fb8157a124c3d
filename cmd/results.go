package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/examina/internal/catalog"
	"github.com/abhisek/examina/internal/questionbank"
	"github.com/abhisek/examina/internal/results"
	"github.com/abhisek/examina/internal/scoring"
	"github.com/abhisek/examina/internal/store"
)

var resultsCmd = &cobra.Command{
	Use:   "results [testId]",
	Short: "Show stored test results",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		res := results.New(s.KV(store.LocalNamespace), nil)
		ctx := context.Background()

		if len(args) == 0 {
			return listResults(ctx, res)
		}

		t, ok := catalog.Get(args[0])
		if !ok {
			return fmt.Errorf("unknown test %q", args[0])
		}
		r, ok := res.Get(ctx, t.ID)
		if !ok {
			fmt.Printf("%s has not been attempted.\n", t.Title)
			return nil
		}
		printResult(t, results.Summarize(r))
		return nil
	},
}

func listResults(ctx context.Context, res *results.Store) error {
	fmt.Printf("%-20s  %-28s  %-10s  %5s  %-8s  %s\n",
		"ID", "Test", "Score", "Pct", "Time", "Completed")
	fmt.Println(strings.Repeat("─", 92))

	for _, t := range catalog.All() {
		r, ok := res.Get(ctx, t.ID)
		if !ok {
			fmt.Printf("%-20s  %-28s  %s\n", t.ID, t.Title, "not attempted")
			continue
		}
		fmt.Printf("%-20s  %-28s  %-10s  %4d%%  %-8s  %s\n",
			t.ID, t.Title,
			fmt.Sprintf("%d/%d", r.Score, r.Total),
			r.Percent(),
			scoring.FormatTime(r.TimeTaken),
			r.CompletedAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

func printResult(t catalog.Test, sum results.Summary) {
	r := sum.Result
	fmt.Printf("Test:        %s\n", t.Title)
	fmt.Printf("Score:       %d/%d (%d%%, %s)\n", r.Score, r.Total, sum.Percent, scoring.Band(sum.Percent))
	fmt.Printf("Time:        %s\n", scoring.FormatTime(r.TimeTaken))
	fmt.Printf("Percentile:  ~%d\n", sum.Percentile)
	fmt.Printf("Completed:   %s\n", r.CompletedAt.Local().Format("2006-01-02 15:04"))
	fmt.Printf("Prediction:  %s (%d%%)\n", sum.Prediction.Likelihood, sum.Prediction.Percentage)
	fmt.Printf("             %s\n", sum.Prediction.Message)

	fmt.Println()
	fmt.Println("Sections")
	fmt.Println(strings.Repeat("─", 48))
	for _, subj := range questionbank.AllSubjects {
		sec, ok := r.SectionScores[subj]
		if !ok {
			continue
		}
		fmt.Printf("%-18s  %3d/%-3d  %4d%%  %s\n",
			subj.Label(), sec.Score, sec.Total, sec.Percent(), scoring.FormatTime(sec.Time))
	}
	if len(r.MarkedForReview) > 0 {
		fmt.Printf("\nMarked for review: %d question(s)\n", len(r.MarkedForReview))
	}
}
