package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	got, ok := ParseDate("1970-01-01")
	require.True(t, ok)
	assert.Equal(t, time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC), got)

	_, ok = ParseDate("01/01/1970")
	assert.False(t, ok)
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "2023-07-19", FormatDate(time.Date(2023, 7, 19, 13, 45, 0, 0, time.UTC)))
}

func TestYearsBetween(t *testing.T) {
	start := time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.InDelta(t, 5.0, YearsBetween(start, end), 0.01)
	assert.Less(t, YearsBetween(end, start), 0.0)
}
