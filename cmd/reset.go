package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/examina/internal/results"
	"github.com/abhisek/examina/internal/store"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all local results, flashcard progress and the study plan",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			fmt.Print("This erases all local progress. Type 'yes' to continue: ")
			line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
			if strings.TrimSpace(line) != "yes" {
				fmt.Println("Aborted.")
				return nil
			}
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := results.New(s.KV(store.LocalNamespace), nil).Clear(context.Background()); err != nil {
			return fmt.Errorf("reset: %w", err)
		}
		fmt.Println("Local progress cleared.")
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
}
