package questionbank

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var importHeader = []string{"id", "subject", "topic", "question", "option_a", "option_b", "option_c", "option_d", "answer", "difficulty", "explanation", "type"}

func TestImportCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.csv")
	csv := "id,subject,topic,question,option_a,option_b,option_c,option_d,answer,difficulty,explanation,type\n" +
		"q1,Maths,Percentage,What is 10% of 50?,5,10,15,20,A,1,Ten percent of fifty.,diagnostic\n" +
		",english,Synonyms,Synonym of happy?,Sad,Glad,Mad,Bad,1,,,\n" +
		"q3,history,Dates,When?,a,b,c,d,A,1,,practice\n" +
		",,,,,,,,,,,\n" +
		"q4,gk,Science,Symbol of iron?,Fe,Ir,In,I,E,1,,practice\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))

	res, err := Import(path, DefaultImportConfig())
	require.NoError(t, err)

	assert.Equal(t, 4, res.Processed)
	assert.Equal(t, 2, res.Skipped)
	assert.Len(t, res.Errors, 2)
	require.Len(t, res.Questions, 2)

	q1 := res.Questions[0]
	assert.Equal(t, "q1", q1.ID)
	assert.Equal(t, Maths, q1.Subject)
	assert.Equal(t, 0, q1.CorrectAnswer)
	assert.Equal(t, TypeDiagnostic, q1.Type)

	q2 := res.Questions[1]
	assert.Equal(t, "english-import-003", q2.ID)
	assert.Equal(t, 1, q2.CorrectAnswer)
	assert.Equal(t, TypePractice, q2.Type, "default type applies when the column is blank")
}

func TestImportXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.xlsx")

	f := excelize.NewFile()
	header := make([]interface{}, len(importHeader))
	for i, h := range importHeader {
		header[i] = h
	}
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &header))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{
		"r1", "reasoning", "Series", "Next: 1, 2, 4, 8, ?", "10", "12", "16", "14", "C", 2, "Doubling.", "mock",
	}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	res, err := Import(path, DefaultImportConfig())
	require.NoError(t, err)
	require.Len(t, res.Questions, 1)

	q := res.Questions[0]
	assert.Equal(t, Reasoning, q.Subject)
	assert.Equal(t, 2, q.CorrectAnswer)
	assert.Equal(t, 2, q.Difficulty)
	assert.Equal(t, TypeMock, q.Type)
	assert.Equal(t, []string{"10", "12", "16", "14"}, q.Options)
}

func TestImportMissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.csv")
	require.NoError(t, os.WriteFile(path, []byte("subject,question\nmaths,What?\n"), 0o644))

	_, err := Import(path, DefaultImportConfig())
	assert.ErrorContains(t, err, "missing required column")
}

func TestImportUnsupportedExtension(t *testing.T) {
	_, err := Import("bank.txt", DefaultImportConfig())
	assert.ErrorContains(t, err, "unsupported file type")
}

func TestWriteJSONThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.json")
	qs := []Question{sampleQuestion("a", English, TypePractice), sampleQuestion("b", GK, TypeDiagnostic)}
	require.NoError(t, WriteJSON(path, qs))

	b, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, b.Len())
	assert.Equal(t, []Subject{English, GK}, b.Subjects())
}
