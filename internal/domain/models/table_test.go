package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableAddColumnCollision(t *testing.T) {
	tb := NewTable("date", "value")
	require.NoError(t, tb.AppendRow(time.Now(), 1.0))

	err := tb.AddColumn("value", []any{2.0})
	assert.ErrorIs(t, err, ErrColumnExists)

	require.NoError(t, tb.AddColumn("extra", []any{3.0}))
	assert.Equal(t, []string{"date", "value", "extra"}, tb.Columns())
}

func TestTableAddColumnLengthMismatch(t *testing.T) {
	tb := NewTable("a")
	require.NoError(t, tb.AppendRow(1.0))
	require.NoError(t, tb.AppendRow(2.0))

	err := tb.AddColumn("b", []any{1.0})
	assert.Error(t, err)
}

func TestTableAppendRowArity(t *testing.T) {
	tb := NewTable("a", "b")
	assert.Error(t, tb.AppendRow(1.0))
	assert.NoError(t, tb.AppendRow(1.0, 2.0))
	assert.Equal(t, 1, tb.NumRows())
}

func TestTableSelectAndRecords(t *testing.T) {
	tb := NewTable("a", "b")
	require.NoError(t, tb.AppendRow(1.0, "x"))
	require.NoError(t, tb.AppendRow(2.0, "y"))

	sel, err := tb.Select("b")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, sel.Columns())
	assert.Equal(t, 2, sel.NumRows())

	_, err = tb.Select("missing")
	assert.ErrorIs(t, err, ErrColumnNotFound)

	recs := tb.Records()
	require.Len(t, recs, 2)
	assert.Equal(t, "x", recs[0]["b"])
}

func TestTableCopyIsDeep(t *testing.T) {
	tb := NewTable("a")
	require.NoError(t, tb.AppendRow(1.0))

	cp := tb.Copy()
	require.NoError(t, cp.AddColumn("b", []any{2.0}))

	assert.False(t, tb.HasColumn("b"))
	assert.True(t, cp.HasColumn("b"))
}
