package cmd

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/abhisek/examina/internal/catalog"
	"github.com/abhisek/examina/internal/questionbank"
)

// version is set with -ldflags "-X github.com/abhisek/examina/cmd.version=...".
var version = ""

// buildVersion falls back to the module version and VCS revision embedded
// by go install.
func buildVersion() string {
	if version != "" {
		return version
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "(devel)"
	}
	v := info.Main.Version
	if v == "" {
		v = "(devel)"
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 7 {
			v += " " + s.Value[:7]
		}
	}
	return v
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and the built-in question bank size",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("examina", buildVersion())
		if short, _ := cmd.Flags().GetBool("short"); short {
			return
		}
		bank := questionbank.Default()
		fmt.Printf("built-in bank: %d questions in %d sections, %d tests in the catalog\n",
			bank.Len(), len(bank.Subjects()), len(catalog.All()))
	},
}

func init() {
	versionCmd.Flags().Bool("short", false, "print only the version")
}
