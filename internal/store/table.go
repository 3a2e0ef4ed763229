package store

// SessionTable is an immutable, header-indexed view of one loaded dataset.
// Cells are kept as the raw strings read from disk.
type SessionTable struct {
	columns []string
	index   map[string]int
	rows    [][]string
}

// NewSessionTable copies nothing; callers hand over ownership of rows.
// When a header repeats, the first occurrence wins.
func NewSessionTable(columns []string, rows [][]string) *SessionTable {
	idx := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, ok := idx[c]; !ok {
			idx[c] = i
		}
	}
	return &SessionTable{columns: columns, index: idx, rows: rows}
}

func (t *SessionTable) Len() int { return len(t.rows) }

func (t *SessionTable) ColumnCount() int { return len(t.columns) }

func (t *SessionTable) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

func (t *SessionTable) Has(col string) bool {
	_, ok := t.index[col]
	return ok
}

// Value returns the cell at (row, col), or ok=false when the column is
// unknown or the row is shorter than the header.
func (t *SessionTable) Value(row int, col string) (string, bool) {
	i, ok := t.index[col]
	if !ok || row < 0 || row >= len(t.rows) {
		return "", false
	}
	r := t.rows[row]
	if i >= len(r) {
		return "", false
	}
	return r[i], true
}

// Column returns every cell of col in row order; missing cells are "".
func (t *SessionTable) Column(col string) []string {
	out := make([]string, len(t.rows))
	for i := range t.rows {
		out[i], _ = t.Value(i, col)
	}
	return out
}
