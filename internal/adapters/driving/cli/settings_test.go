package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidenote-labs/sidenote/internal/core/domain"
)

func TestSettingsShowCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"settings", "show"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "temperature:    0.7")
	assert.Contains(t, buf.String(), "top-k:          40")
	assert.Contains(t, buf.String(), "chunk-size:     1000")
}

func TestSettingsSetCmd_UpdatesValue(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	stub := settingsService.(*stubSettings)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"settings", "set", "temperature", "1.2"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	require.NoError(t, err)
	require.NotNil(t, stub.updated)
	assert.Equal(t, 1.2, stub.updated.Temperature)
	assert.Contains(t, buf.String(), "Set temperature = 1.2")
}

func TestSettingsSetCmd_RejectsInvalidValue(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	stub := settingsService.(*stubSettings)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"settings", "set", "temperature", "99"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Nil(t, stub.updated)
}

func TestSettingsSetCmd_UnknownKey(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"settings", "set", "bogus", "1"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown setting")
}

func TestSettingsResetCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	stub := settingsService.(*stubSettings)
	stub.settings.Temperature = 1.5

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"settings", "reset"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings(), stub.settings)
}

func TestApplySetting(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr bool
		check   func(t *testing.T, s domain.Settings)
	}{
		{
			name:  "temperature",
			key:   "temperature",
			value: "1.5",
			check: func(t *testing.T, s domain.Settings) {
				assert.Equal(t, 1.5, s.Temperature)
			},
		},
		{
			name:  "top-k",
			key:   "top-k",
			value: "80",
			check: func(t *testing.T, s domain.Settings) {
				assert.Equal(t, 80, s.TopK)
			},
		},
		{
			name:  "max-recent",
			key:   "max-recent",
			value: "6",
			check: func(t *testing.T, s domain.Settings) {
				assert.Equal(t, 6, s.MaxRecentMessages)
			},
		},
		{
			name:  "max-sources",
			key:   "max-sources",
			value: "5",
			check: func(t *testing.T, s domain.Settings) {
				assert.Equal(t, 5, s.MaxSources)
			},
		},
		{
			name:  "min-similarity",
			key:   "min-similarity",
			value: "0.5",
			check: func(t *testing.T, s domain.Settings) {
				assert.Equal(t, 0.5, s.MinSimilarityThreshold)
			},
		},
		{
			name:  "chunk-size",
			key:   "chunk-size",
			value: "2000",
			check: func(t *testing.T, s domain.Settings) {
				assert.Equal(t, 2000, s.ChunkSize)
			},
		},
		{
			name:  "chunk-overlap",
			key:   "chunk-overlap",
			value: "300",
			check: func(t *testing.T, s domain.Settings) {
				assert.Equal(t, 300, s.ChunkOverlap)
			},
		},
		{
			name:    "non-numeric value",
			key:     "top-k",
			value:   "lots",
			wantErr: true,
		},
		{
			name:    "unknown key",
			key:     "verbosity",
			value:   "1",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := domain.DefaultSettings()
			err := applySetting(&s, tt.key, tt.value)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, s)
		})
	}
}
