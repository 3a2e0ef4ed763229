package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionTableAccess(t *testing.T) {
	tbl := NewSessionTable(
		[]string{"Month", "Revenue", "Month"},
		[][]string{{"Feb", "TRUE", "ignored"}, {"Mar"}},
	)

	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, 3, tbl.ColumnCount())
	assert.True(t, tbl.Has("Revenue"))
	assert.False(t, tbl.Has("Weekend"))

	v, ok := tbl.Value(0, "Month")
	assert.True(t, ok)
	assert.Equal(t, "Feb", v)

	_, ok = tbl.Value(1, "Revenue")
	assert.False(t, ok, "short row")

	_, ok = tbl.Value(5, "Month")
	assert.False(t, ok)

	assert.Equal(t, []string{"TRUE", ""}, tbl.Column("Revenue"))
}

func TestColumnsIsACopy(t *testing.T) {
	tbl := NewSessionTable([]string{"A"}, nil)
	cols := tbl.Columns()
	cols[0] = "B"
	assert.True(t, tbl.Has("A"))
	assert.Equal(t, []string{"A"}, tbl.Columns())
}
