package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/examina/internal/questionbank"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Convert an .xlsx or .csv question sheet into a JSON bank",
	Long: `Read questions from a spreadsheet and write them as a JSON bank that
--questions can load.

The first row names the columns: id, subject, topic, question, option_a,
option_b, option_c, option_d, answer, difficulty, explanation and type.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("output")
		sheet, _ := cmd.Flags().GetString("sheet")
		typ, _ := cmd.Flags().GetString("type")

		cfg := questionbank.DefaultImportConfig()
		cfg.SheetName = sheet
		if typ != "" {
			cfg.DefaultType = questionbank.QuestionType(typ)
			if !cfg.DefaultType.Valid() {
				return fmt.Errorf("invalid question type %q", typ)
			}
		}

		res, err := questionbank.Import(args[0], cfg)
		if err != nil {
			return err
		}
		for _, e := range res.Errors {
			fmt.Fprintln(os.Stderr, "skipped:", e)
		}
		if len(res.Questions) == 0 {
			return fmt.Errorf("no valid questions in %s", args[0])
		}

		if err := questionbank.WriteJSON(out, res.Questions); err != nil {
			return err
		}
		fmt.Printf("Imported %d of %d rows into %s (%d skipped)\n",
			len(res.Questions), res.Processed, out, res.Skipped)
		return nil
	},
}

func init() {
	importCmd.Flags().StringP("output", "o", "questions.json", "Output JSON file")
	importCmd.Flags().String("sheet", "", "Sheet name (defaults to the first sheet)")
	importCmd.Flags().String("type", "", "Question type for rows without one (diagnostic, mock or practice)")
}
