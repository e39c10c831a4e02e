package formatting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/halalcheck/pkg/formatting"
)

func TestParseBytes(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{"bare bytes", "1024", 1024, false},
		{"kilobytes", "1KB", 1024, false},
		{"default body limit", "1MB", 1 << 20, false},
		{"lowercase unit", "10mb", 10 << 20, false},
		{"with space", "100 MB", 100 << 20, false},
		{"fractional", "1.5KB", 1536, false},
		{"surrounding whitespace", "  2MB  ", 2 << 20, false},
		{"empty", "", 0, true},
		{"unknown unit", "50XX", 0, true},
		{"no number", "MB", 0, true},
		{"negative", "-5MB", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := formatting.ParseBytes(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		name      string
		n         int64
		precision int
		want      string
	}{
		{"zero", 0, 2, "0 B"},
		{"bytes", 500, 0, "500 B"},
		{"one MB", 1 << 20, 0, "1 MB"},
		{"fractional MB", 1536 * 1024, 1, "1.5 MB"},
		{"negative precision clamped", 1024, -1, "1 KB"},
		{"negative count", -2048, 0, "-2 KB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatting.FormatBytes(tt.n, tt.precision))
		})
	}
}

func TestBytesRoundTrip(t *testing.T) {
	for _, n := range []int64{1 << 10, 50 << 20, 1 << 30} {
		parsed, err := formatting.ParseBytes(formatting.FormatBytes(n, 0))
		require.NoError(t, err)
		assert.Equal(t, n, parsed)
	}
}
