package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/examina/internal/llm"
	"github.com/abhisek/examina/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect AI tutor and study-plan coach requests",
}

// withEvents opens the local database for one llm subcommand.
func withEvents(cmd *cobra.Command, fn func(ctx context.Context, events store.EventRepo) error) error {
	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(cmd.Context(), s.EventRepo())
}

func rule(n int) string { return strings.Repeat("─", n) }

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent requests, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		failed, _ := cmd.Flags().GetBool("failed")
		raw, _ := cmd.Flags().GetString("purpose")
		purpose, err := llm.ParsePurpose(raw)
		if err != nil {
			return err
		}

		return withEvents(cmd, func(ctx context.Context, events store.EventRepo) error {
			rows, err := events.QueryLLMEvents(ctx, store.QueryOpts{Limit: limit, Purpose: string(purpose)})
			if err != nil {
				return fmt.Errorf("query events: %w", err)
			}

			fmt.Printf("%-5s  %-16s  %-10s  %-11s  %-26s  %11s  %6s  %s\n",
				"ID", "When", "Purpose", "Vendor", "Model", "Tokens", "Ms", "")
			fmt.Println(rule(104))
			shown := 0
			for _, e := range rows {
				if failed && e.Success {
					continue
				}
				status := "ok"
				if !e.Success {
					status = "FAILED"
				}
				fmt.Printf("%-5d  %-16s  %-10s  %-11s  %-26s  %5d/%-5d  %6d  %s\n",
					e.ID,
					e.Timestamp.Local().Format("02 Jan 15:04:05"),
					e.Purpose,
					e.Provider,
					truncate(e.Model, 26),
					e.InputTokens, e.OutputTokens,
					e.LatencyMs,
					status,
				)
				shown++
			}
			if shown == 0 {
				fmt.Println("No matching requests.")
			}
			return nil
		})
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the prompt and reply of one request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid request id %q", args[0])
		}

		return withEvents(cmd, func(ctx context.Context, events store.EventRepo) error {
			e, err := events.GetLLMEvent(ctx, id)
			if err != nil {
				return fmt.Errorf("get event: %w", err)
			}
			if e == nil {
				return fmt.Errorf("no request with id %d", id)
			}

			fmt.Printf("#%d  %s  %s via %s (%s)\n", e.ID,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.Purpose, e.Provider, e.Model)
			fmt.Printf("%d input + %d output tokens in %dms", e.InputTokens, e.OutputTokens, e.LatencyMs)
			if c := llm.LookupCost(e.Model); c != nil {
				fmt.Printf(", about %s", formatCost(c.Cost(e.InputTokens, e.OutputTokens)))
			}
			fmt.Println()
			if !e.Success {
				fmt.Println("Failed:", e.ErrorMessage)
			}

			for _, part := range []struct{ title, body string }{
				{"Prompt", e.RequestBody},
				{"Reply", e.ResponseBody},
			} {
				fmt.Printf("\n%s\n%s\n", part.title, rule(60))
				if part.body == "" {
					part.body = "(none)"
				}
				fmt.Println(strings.TrimRight(part.body, "\n"))
			}
			return nil
		})
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize tokens, latency and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEvents(cmd, func(ctx context.Context, events store.EventRepo) error {
			byPurpose, err := events.LLMUsageByPurpose(ctx)
			if err != nil {
				return fmt.Errorf("query usage: %w", err)
			}
			byModel, err := events.LLMUsageByModel(ctx)
			if err != nil {
				return fmt.Errorf("query model usage: %w", err)
			}
			if len(byPurpose) == 0 {
				fmt.Println("No tutor or coach requests recorded yet.")
				return nil
			}
			printPurposeUsage(byPurpose)
			fmt.Println()
			printModelCost(byModel)
			return nil
		})
	},
}

// printPurposeUsage lists the tutor and the coach first, with zero rows when
// unused, then any other recorded purpose.
func printPurposeUsage(stats []store.LLMUsageStats) {
	rows := make(map[string]store.LLMUsageStats, len(stats))
	for _, st := range stats {
		rows[st.Purpose] = st
	}
	order := make([]string, 0, len(stats)+len(llm.Purposes))
	for _, p := range llm.Purposes {
		order = append(order, string(p))
	}
	for _, st := range stats {
		if _, err := llm.ParsePurpose(st.Purpose); err != nil {
			order = append(order, st.Purpose)
		}
	}

	fmt.Printf("%-12s  %6s  %10s  %10s  %8s\n", "Purpose", "Calls", "Input", "Output", "Avg ms")
	fmt.Println(rule(54))
	var total store.LLMUsageStats
	for _, name := range order {
		st := rows[name]
		fmt.Printf("%-12s  %6d  %10d  %10d  %8d\n", name, st.Calls, st.InputTokens, st.OutputTokens, st.AvgLatencyMs)
		total.Calls += st.Calls
		total.InputTokens += st.InputTokens
		total.OutputTokens += st.OutputTokens
	}
	fmt.Println(rule(54))
	fmt.Printf("%-12s  %6d  %10d  %10d\n", "all", total.Calls, total.InputTokens, total.OutputTokens)
}

func printModelCost(usage []store.LLMModelUsage) {
	fmt.Printf("%-32s  %6s  %10s\n", "Model", "Calls", "Est. USD")
	fmt.Println(rule(52))
	var sum float64
	var unpriced []string
	for _, mu := range usage {
		cost := "?"
		if c := llm.LookupCost(mu.Model); c != nil {
			usd := c.Cost(mu.InputTokens, mu.OutputTokens)
			sum += usd
			cost = formatCost(usd)
		} else {
			unpriced = append(unpriced, mu.Model)
		}
		fmt.Printf("%-32s  %6d  %10s\n", truncate(mu.Model, 32), mu.Calls, cost)
	}
	fmt.Println(rule(52))
	label := "total"
	if len(unpriced) > 0 {
		label = "total (priced models only)"
	}
	fmt.Printf("%-40s  %10s\n", label, formatCost(sum))
	if len(unpriced) > 0 {
		fmt.Println("No price list for:", strings.Join(unpriced, ", "))
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "number of requests to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "only tutor or study-plan requests")
	llmListCmd.Flags().Bool("failed", false, "only failed requests")

	llmCmd.AddCommand(llmListCmd, llmViewCmd, llmStatsCmd)
}
