package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/examina/internal/app"
	"github.com/abhisek/examina/internal/llm"
	"github.com/abhisek/examina/internal/screen"
	"github.com/abhisek/examina/internal/screens/home"
	"github.com/abhisek/examina/internal/store"
)

// runApp opens the store, builds dependencies, and launches the TUI.
// initial, when set, opens over the home screen.
func runApp(cmd *cobra.Command, initial func(home.Deps) screen.Screen) error {
	ctx := cmd.Context()

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	bank, err := loadBank(cmd)
	if err != nil {
		return err
	}

	opts := app.Options{Store: st, Bank: bank, Initial: initial}

	provider, err := newProvider(ctx, st.EventRepo(), nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
		fmt.Fprintln(os.Stderr, "The AI tutor and plan coaching will be unavailable.")
	} else {
		opts.Provider = provider
	}

	return app.Run(opts)
}

// newProvider builds the LLM provider from EXAMINA_* settings, falling back
// to the first vendor API key found in the environment. The TUI passes a
// nil log so recorder warnings never draw over the screen.
func newProvider(ctx context.Context, events store.EventRepo, log *zap.Logger) (llm.Provider, error) {
	cfg := llm.ConfigFromEnv()
	if err := cfg.Validate(); err != nil {
		discovered, ok := llm.DiscoverConfig()
		if !ok {
			return nil, err
		}
		cfg = discovered
	}
	return llm.NewProvider(ctx, cfg, events, log)
}
