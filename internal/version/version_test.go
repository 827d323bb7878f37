package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildNumber(t *testing.T) {
	tests := []struct {
		name      string
		date      string
		expected  int
		wantError bool
	}{
		{name: "epoch date", date: "2025-12-04", expected: 0},
		{name: "next day", date: "2025-12-05", expected: 1},
		{name: "one year later", date: "2026-12-04", expected: 365},
		{name: "with leap years", date: "2032-12-04", expected: 2557},
		{name: "invalid format", date: "04.12.2025", wantError: true},
		{name: "empty date", date: "", wantError: true},
		{name: "before epoch", date: "2025-12-03", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildNumber(tt.date)
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestInfo(t *testing.T) {
	old := BuildDate
	t.Cleanup(func() { BuildDate = old })

	BuildDate = ""
	info := Info()
	assert.NotEmpty(t, info.Error)
	assert.Equal(t, "unknown", info.Commit)
	assert.Contains(t, String(), "dev build")

	BuildDate = "2025-12-14"
	info = Info()
	assert.Empty(t, info.Error)
	assert.Equal(t, 10, info.BuildID)
	assert.Contains(t, String(), "build 10 (2025-12-14)")
}
