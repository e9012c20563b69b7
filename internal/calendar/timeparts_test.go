package calendar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractTimeParts(t *testing.T) {
	cases := []struct {
		name  string
		in    string
		hours int
		mins  int
	}{
		{"plain timestamp", "2025-07-04T19:30:00", 19, 30},
		{"fractional seconds", "2025-07-04T19:30:00.123", 19, 30},
		{"utc suffix", "2025-07-04T19:30:00Z", 19, 30},
		{"offset suffix", "2025-07-04T19:30:00-04:00", 19, 30},
		{"no seconds with offset", "2025-07-04T19:30-04:00", 19, 30},
		{"midnight", "2025-01-01T00:00:00", 0, 0},
		{"no separator", "2025-07-04 19:30:00", 0, 0},
		{"date only", "2025-07-04", 0, 0},
		{"empty", "", 0, 0},
		{"garbage", "not a timestamp", 0, 0},
		{"separator but no time", "2025-07-04T", 0, 0},
		{"separator but junk time", "2025-07-04Tabc:def", 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, m := ExtractTimeParts(tc.in)
			assert.Equal(t, tc.hours, h)
			assert.Equal(t, tc.mins, m)
		})
	}
}

// The extractor only reads digits, so repeated calls and host timezone have
// no influence on the result.
func TestExtractTimePartsIdempotent(t *testing.T) {
	for i := 0; i < 3; i++ {
		h, m := ExtractTimeParts("2025-07-04T19:30:00")
		assert.Equal(t, 19, h)
		assert.Equal(t, 30, m)
	}
}
