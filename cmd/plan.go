package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/examina/internal/llm"
	"github.com/abhisek/examina/internal/results"
	"github.com/abhisek/examina/internal/store"
	"github.com/abhisek/examina/internal/studyplan"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print the personalized study plan",
	RunE: func(cmd *cobra.Command, args []string) error {
		regenerate, _ := cmd.Flags().GetBool("regenerate")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		kv := s.KV(store.LocalNamespace)
		progress := studyplan.NewProgress(kv)

		p, ok, err := progress.Load(ctx)
		if err != nil {
			return fmt.Errorf("load plan: %w", err)
		}
		if !ok || regenerate {
			d, found := results.New(kv, nil).GetDiagnostic(ctx)
			if !found {
				fmt.Println("Take the diagnostic test first: examina diagnostic")
				return nil
			}

			var provider llm.Provider
			if pv, err := newProvider(ctx, s.EventRepo(), nil); err == nil {
				provider = pv
			}
			p, err = studyplan.NewCoach(provider).Plan(ctx, studyplan.FromDiagnostic(d), studyplan.DefaultTemplate())
			if err != nil {
				fmt.Fprintln(os.Stderr, "Coaching note unavailable:", err)
			}
			if err := progress.Save(ctx, p); err != nil {
				return fmt.Errorf("save plan: %w", err)
			}
		}

		printPlan(p)
		return nil
	},
}

func init() {
	planCmd.Flags().Bool("regenerate", false, "Rebuild the plan from the diagnostic, discarding progress")
}

func printPlan(p *studyplan.Plan) {
	done, total := p.Progress()
	fmt.Printf("%s  (%d/%d tasks done)\n", p.Title, done, total)
	fmt.Println(strings.Repeat("─", 60))
	if len(p.WeakSubjects) > 0 {
		fmt.Printf("Weak:    %s\n", strings.Join(p.WeakSubjects, ", "))
	}
	if len(p.StrongSubjects) > 0 {
		fmt.Printf("Strong:  %s\n", strings.Join(p.StrongSubjects, ", "))
	}
	fmt.Println(p.Recommendation)
	if p.Coach != nil {
		fmt.Println()
		if len(p.Coach.FocusTopics) > 0 {
			fmt.Printf("Focus:   %s\n", strings.Join(p.Coach.FocusTopics, ", "))
		}
		fmt.Printf("Goal:    %s\n", p.Coach.WeeklyGoal)
	}

	for _, d := range p.Days {
		fmt.Println()
		mark := ""
		if d.Completed {
			mark = "  ✓"
		}
		fmt.Printf("Day %d  %s%s\n", d.Day, d.Theme, mark)
		for _, t := range d.Tasks {
			box := "[ ]"
			if t.Completed {
				box = "[x]"
			}
			fmt.Printf("  %s %-10s %-32s %s\n", box, t.Subject, t.Topic, t.Type)
		}
	}
}
