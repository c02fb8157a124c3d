package questionbank

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ImportConfig controls how a spreadsheet is read.
type ImportConfig struct {
	SheetName   string       // Sheet to read; empty means the first sheet
	DefaultType QuestionType // Used when a row has no type column value
}

// DefaultImportConfig returns the default import configuration.
func DefaultImportConfig() ImportConfig {
	return ImportConfig{DefaultType: TypePractice}
}

// ImportResult holds the outcome of an import.
type ImportResult struct {
	Questions []Question
	Processed int
	Skipped   int
	Errors    []string
}

// Import reads questions from an .xlsx or .csv file. The first row must be a
// header naming the columns; rows that fail validation are skipped and
// reported in ImportResult.Errors.
func Import(path string, cfg ImportConfig) (*ImportResult, error) {
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err = readCSV(path)
	case ".xlsx", ".xlsm":
		rows, err = readSheet(path, cfg.SheetName)
	default:
		return nil, fmt.Errorf("unsupported file type %q (want .xlsx or .csv)", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}
	return importRows(rows, cfg)
}

func readSheet(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

func importRows(rows [][]string, cfg ImportConfig) (*ImportResult, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("spreadsheet is empty")
	}

	cols := make(map[string]int)
	for i, h := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"subject", "question", "option_a", "option_b", "option_c", "option_d", "answer"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}

	res := &ImportResult{}
	seen := make(map[string]bool)
	for i, row := range rows[1:] {
		line := i + 2
		if isBlank(row) {
			continue
		}
		res.Processed++

		q, err := parseRow(row, cols, cfg, line)
		if err == nil && seen[q.ID] {
			err = fmt.Errorf("duplicate id %q", q.ID)
		}
		if err == nil {
			if probs := checkQuestion(q); len(probs) > 0 {
				err = fmt.Errorf("%s", strings.Join(probs, "; "))
			}
		}
		if err != nil {
			res.Skipped++
			res.Errors = append(res.Errors, fmt.Sprintf("row %d: %v", line, err))
			continue
		}
		seen[q.ID] = true
		res.Questions = append(res.Questions, q)
	}
	return res, nil
}

func parseRow(row []string, cols map[string]int, cfg ImportConfig, line int) (Question, error) {
	cell := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	q := Question{
		ID:          cell("id"),
		Subject:     Subject(strings.ToLower(cell("subject"))),
		Topic:       cell("topic"),
		Text:        cell("question"),
		Options:     []string{cell("option_a"), cell("option_b"), cell("option_c"), cell("option_d")},
		Explanation: cell("explanation"),
		Type:        QuestionType(strings.ToLower(cell("type"))),
		Difficulty:  1,
	}
	if q.Type == "" {
		q.Type = cfg.DefaultType
	}
	if q.ID == "" {
		q.ID = fmt.Sprintf("%s-import-%03d", q.Subject, line)
	}

	ans, err := parseAnswer(cell("answer"))
	if err != nil {
		return Question{}, err
	}
	q.CorrectAnswer = ans

	if d := cell("difficulty"); d != "" {
		n, err := strconv.Atoi(d)
		if err != nil {
			return Question{}, fmt.Errorf("invalid difficulty %q", d)
		}
		q.Difficulty = n
	}
	return q, nil
}

// parseAnswer accepts a letter A-D or a zero-based index 0-3.
func parseAnswer(s string) (int, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) == 1 && s[0] >= 'A' && s[0] <= 'D' {
		return int(s[0] - 'A'), nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n >= OptionCount {
		return 0, fmt.Errorf("invalid answer %q (want A-D or 0-3)", s)
	}
	return n, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// WriteJSON writes questions to path in the bank file format read by Load.
func WriteJSON(path string, questions []Question) error {
	if err := validateQuestions(questions); err != nil {
		return err
	}
	data, err := json.MarshalIndent(questions, "", "  ")
	if err != nil {
		return fmt.Errorf("encode questions: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
