package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/examina/internal/catalog"
	"github.com/abhisek/examina/internal/screen"
	"github.com/abhisek/examina/internal/screens/home"
	sessionscreen "github.com/abhisek/examina/internal/screens/session"
)

var diagnosticCmd = &cobra.Command{
	Use:   "diagnostic",
	Short: "Take the diagnostic test",
	RunE: func(cmd *cobra.Command, args []string) error {
		t, _ := catalog.Get(catalog.Diagnostic)
		return runApp(cmd, func(d home.Deps) screen.Screen {
			return sessionscreen.New(t, d.Bank, d.Results)
		})
	},
}
