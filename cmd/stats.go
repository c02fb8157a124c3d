package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/examina/internal/flashcards"
	"github.com/abhisek/examina/internal/questionbank"
	"github.com/abhisek/examina/internal/results"
	"github.com/abhisek/examina/internal/scoring"
	"github.com/abhisek/examina/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show exam readiness and diagnostic strengths",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := context.Background()
		kv := s.KV(store.LocalNamespace)
		res := results.New(kv, nil)

		rd := res.Rollup(ctx)
		fmt.Println("Exam Readiness")
		fmt.Println(strings.Repeat("─", 40))
		if rd.TestsTaken == 0 {
			fmt.Println("No tests taken yet.")
		} else {
			fmt.Printf("Score:       %d/%d (%d%%)\n", rd.Score, rd.Total, rd.Percent)
			fmt.Printf("Percentile:  ~%d\n", rd.Percentile)
			fmt.Printf("Tests:       %d\n", rd.TestsTaken)
		}

		fmt.Println()
		fmt.Println("Diagnostic")
		fmt.Println(strings.Repeat("─", 40))
		d, ok := res.GetDiagnostic(ctx)
		if !ok {
			fmt.Println("Not taken. Run `examina diagnostic` to start.")
		} else {
			fmt.Printf("Score:       %d/%d in %s\n", d.TotalScore, d.TotalQuestions, scoring.FormatTime(d.TimeSpent))
			fmt.Printf("Strengths:   %s\n", subjectList(d.Strengths()))
			fmt.Printf("Weaknesses:  %s\n", subjectList(d.Weaknesses()))
		}

		m, err := flashcards.NewStore(kv).Load(ctx)
		if err != nil {
			return fmt.Errorf("load flashcards: %w", err)
		}
		fmt.Println()
		fmt.Printf("Flashcards mastered: %d/%d\n", m.Mastered(), len(flashcards.Deck()))
		return nil
	},
}

func subjectList(subjects []questionbank.Subject) string {
	if len(subjects) == 0 {
		return "none"
	}
	labels := make([]string, len(subjects))
	for i, s := range subjects {
		labels[i] = s.Label()
	}
	return strings.Join(labels, ", ")
}
