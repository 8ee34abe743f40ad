package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDateLocalMidnight(t *testing.T) {
	got, err := ParseDate("2024-03-15")
	assert.NoError(t, err)

	want := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.Local)
	assert.True(t, got.Equal(want), "got %v, want %v", got, want)
	// The parsed day must be the literal calendar day, never shifted by the
	// zone offset the way a UTC round-trip would shift it.
	assert.Equal(t, 2024, got.Year())
	assert.Equal(t, time.March, got.Month())
	assert.Equal(t, 15, got.Day())
	assert.Equal(t, 0, got.Hour())
	assert.Equal(t, time.Local, got.Location())
}

func TestParseDateLeapDay(t *testing.T) {
	_, err := ParseDate("2024-02-29")
	assert.NoError(t, err)

	_, err = ParseDate("2023-02-29")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestParseDateRejectsMalformedInput(t *testing.T) {
	for _, input := range []string{
		"",
		"2024-03",
		"2024-13-01",
		"2024-00-10",
		"2024-04-31",
		"2024-04-00",
		"March 15, 2024",
		"2024-0a-15",
	} {
		_, err := ParseDate(input)
		assert.ErrorIs(t, err, ErrInvalidDate, "input %q", input)
	}
}

func TestLocalMidnight(t *testing.T) {
	now := time.Date(2024, time.June, 7, 18, 42, 31, 999, time.Local)
	got := LocalMidnight(now)
	assert.True(t, got.Equal(time.Date(2024, time.June, 7, 0, 0, 0, 0, time.Local)))
}
