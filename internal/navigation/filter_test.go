package navigation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterActive(t *testing.T) {
	var nilFilter *Filter
	assert.False(t, nilFilter.Active())
	assert.False(t, (&Filter{}).Active())
	assert.False(t, (&Filter{Text: "  \t"}).Active())
	assert.True(t, (&Filter{Text: "ERROR"}).Active())
	assert.True(t, (&Filter{Text: " x "}).Active())
}

func TestFilterIncludesDate(t *testing.T) {
	day := func(s string) time.Time {
		d, err := ParseDate(s)
		require.NoError(t, err)
		return d
	}
	noon := time.Date(2024, 3, 15, 12, 0, 0, 0, time.Local)
	lateNight := time.Date(2024, 3, 15, 23, 59, 59, 0, time.Local)

	tests := []struct {
		name   string
		filter *Filter
		t      time.Time
		want   bool
	}{
		{"no range", &Filter{Text: "x"}, noon, true},
		{"nil filter", nil, noon, true},
		{"single day inclusive", &Filter{StartDate: day("2024-03-15"), EndDate: day("2024-03-15")}, lateNight, true},
		{"before start", &Filter{StartDate: day("2024-03-16")}, noon, false},
		{"after end", &Filter{EndDate: day("2024-03-14")}, noon, false},
		{"open start", &Filter{EndDate: day("2024-03-15")}, noon, true},
		{"open end", &Filter{StartDate: day("2024-03-01")}, noon, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.IncludesDate(tt.t))
		})
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	d, err = ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, 2024, d.Year())
	assert.Equal(t, time.February, d.Month())
	assert.Equal(t, 29, d.Day())
	assert.Equal(t, time.Local, d.Location())

	_, err = ParseDate("29/02/2024")
	assert.Error(t, err)
}
