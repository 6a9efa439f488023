package tabular

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReadCSV(t *testing.T) {
	input := strings.Join([]string{
		"Role Id,Name,Description",
		"R1,Data Analyst,Crunches numbers",
		"R2,Data Engineer,",
		"",
	}, "\n")

	rows, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "R1", rows[0]["Role Id"])
	assert.Equal(t, "Crunches numbers", rows[0]["Description"])
	assert.Equal(t, "R2", rows[1]["Role Id"])
	_, hasDescription := rows[1]["Description"]
	assert.False(t, hasDescription, "empty cells are absent, not empty strings")
}

func TestReadCSV_Empty(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReadJSON(t *testing.T) {
	input := `[
		{"id": "R1", "name": "Analyst", "description": null, "metadata": {"team": "data"}},
		{"roleA": "R1", "roleB": "R2", "score": 0.8}
	]`

	rows, err := ReadJSON(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "R1", rows[0]["id"])
	_, hasDescription := rows[0]["description"]
	assert.False(t, hasDescription, "null values are dropped")
	assert.Equal(t, "data", rows[0]["team"], "object values flatten one level")

	assert.Equal(t, "0.8", rows[1]["score"], "numbers keep their literal form")
}

func TestReadXLSX(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "roles.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]string{"id", "name"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]string{"R1", "Analyst"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]string{"R2", "Engineer"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	rows, err := ReadXLSX(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "R1", rows[0]["id"])
	assert.Equal(t, "Engineer", rows[1]["name"])
}

func TestReadFile_UnsupportedExtension(t *testing.T) {
	_, err := ReadFile("data/roles.parquet")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}

func TestConvertToJSON(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "roles.csv")
	outPath := filepath.Join(dir, "out", "roles.json")

	csv := "id,name\nR1,Analyst\nR2,Engineer\n"
	require.NoError(t, os.WriteFile(inPath, []byte(csv), 0o644))

	count, err := ConvertToJSON(inPath, outPath)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	f, err := os.Open(outPath)
	require.NoError(t, err)
	defer f.Close()

	rows, err := ReadJSON(f)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Analyst", rows[0]["name"])
}
