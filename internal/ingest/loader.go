package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/AngelCh415/insightchat-go/internal/store"
)

// RequiredColumns is checked in this order; error messages follow it.
var RequiredColumns = []string{
	"Revenue", "BounceRates", "ExitRates", "PageValues",
	"Weekend", "Month", "VisitorType",
}

type DatasetError struct {
	Msg string
	Err error
}

func (e *DatasetError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *DatasetError) Unwrap() error { return e.Err }

// LoadDataset reads a headed CSV file and checks the required columns.
// Validation is all-or-nothing: any error means no table.
func LoadDataset(path string) (*store.SessionTable, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &DatasetError{Msg: "Dataset file not found: " + path}
		}
		return nil, &DatasetError{Msg: "Failed to read CSV file", Err: err}
	}
	defer f.Close()

	return ReadDataset(f)
}

// ReadDataset is LoadDataset without the file handling.
func ReadDataset(r io.Reader) (*store.SessionTable, error) {
	cr := csv.NewReader(r)
	// short rows are tolerated (missing cells), long rows are not
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &DatasetError{Msg: "Failed to read CSV file", Err: errors.New("no columns to parse from file")}
	}
	if err != nil {
		return nil, &DatasetError{Msg: "Failed to read CSV file", Err: err}
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	var rows [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &DatasetError{Msg: "Failed to read CSV file", Err: err}
		}
		if len(rec) > len(header) {
			line, _ := cr.FieldPos(0)
			return nil, &DatasetError{
				Msg: "Failed to read CSV file",
				Err: fmt.Errorf("expected %d fields in line %d, saw %d", len(header), line, len(rec)),
			}
		}
		rows = append(rows, rec)
	}

	t := store.NewSessionTable(header, rows)

	var missing []string
	for _, c := range RequiredColumns {
		if !t.Has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, &DatasetError{Msg: "Missing required columns: " + strings.Join(missing, ", ")}
	}
	return t, nil
}
