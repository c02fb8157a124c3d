package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/examina/internal/questionbank"
	"github.com/abhisek/examina/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "examina",
	Short: "SSC CGL exam practice in the terminal",
	Long: `Examina - diagnostic, practice and mock tests for the SSC CGL exam,
with flashcards, a study plan and an AI tutor.

The AI tutor needs an LLM API key. Set one of GEMINI_API_KEY,
OPENAI_API_KEY, ANTHROPIC_API_KEY or OPENROUTER_API_KEY, or pick a provider
explicitly with EXAMINA_LLM_PROVIDER and EXAMINA_<PROVIDER>_API_KEY.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, nil)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides EXAMINA_DB env var)")
	rootCmd.PersistentFlags().String("questions", "", "Path to a JSON question bank (defaults to the built-in bank)")

	rootCmd.AddCommand(diagnosticCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(resultsCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then EXAMINA_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// openStore opens the local database.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

// loadBank returns the bank named by --questions, or the built-in one.
func loadBank(cmd *cobra.Command) (*questionbank.Bank, error) {
	p, _ := cmd.Flags().GetString("questions")
	if p == "" {
		return questionbank.Default(), nil
	}
	b, err := questionbank.Load(p)
	if err != nil {
		return nil, fmt.Errorf("load question bank: %w", err)
	}
	return b, nil
}
