package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "Administrative,BounceRates,ExitRates,PageValues,Month,VisitorType,Weekend,Revenue\n"

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoadDataset(t *testing.T) {
	p := writeFile(t, "sessions.csv", header+
		"0,0.2,0.2,0,Feb,Returning_Visitor,FALSE,FALSE\n"+
		"1,0.0,0.1,12.5,Mar,New_Visitor,TRUE,TRUE\n")

	tbl, err := LoadDataset(p)
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, 8, tbl.ColumnCount())

	v, ok := tbl.Value(1, "PageValues")
	require.True(t, ok)
	assert.Equal(t, "12.5", v)
}

func TestLoadDatasetMissingFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nope.csv")

	_, err := LoadDataset(p)
	var derr *DatasetError
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, "Dataset file not found: "+p, err.Error())
}

func TestLoadDatasetMissingPageValues(t *testing.T) {
	p := writeFile(t, "s.csv", "Revenue,BounceRates,ExitRates,Weekend,Month,VisitorType\nTRUE,0,0,FALSE,Feb,New_Visitor\n")

	_, err := LoadDataset(p)
	var derr *DatasetError
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, "Missing required columns: PageValues", err.Error())
}

func TestLoadDatasetMissingColumnsInCheckOrder(t *testing.T) {
	_, err := ReadDataset(strings.NewReader("VisitorType,Month,Revenue\nNew_Visitor,Feb,TRUE\n"))
	require.Error(t, err)
	assert.Equal(t, "Missing required columns: BounceRates, ExitRates, PageValues, Weekend", err.Error())
}

func TestReadDatasetMalformed(t *testing.T) {
	cases := map[string]string{
		"empty":       "",
		"bad quoting": header + "0,\"0.2,0.2,0,Feb,Returning_Visitor,FALSE,FALSE\n",
		"long row":    header + "0,0.2,0.2,0,Feb,Returning_Visitor,FALSE,FALSE,extra\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ReadDataset(strings.NewReader(body))
			var derr *DatasetError
			require.True(t, errors.As(err, &derr), "got %v", err)
			assert.True(t, strings.HasPrefix(err.Error(), "Failed to read CSV file: "), err.Error())
		})
	}
}

func TestReadDatasetShortRowAndBOM(t *testing.T) {
	tbl, err := ReadDataset(strings.NewReader("\ufeff" + header + "0,0.2\n"))
	require.NoError(t, err)
	assert.True(t, tbl.Has("Administrative"))

	_, ok := tbl.Value(0, "Revenue")
	assert.False(t, ok)
}

func TestHeaderOnlyDataset(t *testing.T) {
	tbl, err := ReadDataset(strings.NewReader(header))
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.Len())
}

func TestLoadTemplate(t *testing.T) {
	p := writeFile(t, "prompt.md", "Analyse:\n{context}\n")

	s, err := LoadTemplate(p)
	require.NoError(t, err)
	assert.Equal(t, "Analyse:\n{context}\n", s)

	missing := filepath.Join(t.TempDir(), "missing.md")
	_, err = LoadTemplate(missing)
	var terr *TemplateError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, "Prompt template not found: "+missing, err.Error())
}
