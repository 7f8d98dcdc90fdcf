package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "console", cfg.Format)
	assert.Equal(t, "stdout", cfg.Output)
	assert.NotEmpty(t, cfg.TimeFormat)
}

func TestNew(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
	}{
		{name: "default config", cfg: DefaultConfig()},
		{
			name: "debug console",
			cfg: &Config{
				Level:      "debug",
				Format:     "console",
				Output:     "stdout",
				TimeFormat: "2006-01-02T15:04:05Z07:00",
			},
		},
		{
			name: "json to stderr",
			cfg: &Config{
				Level:      "info",
				Format:     "json",
				Output:     "stderr",
				TimeFormat: "2006-01-02T15:04:05Z07:00",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := New(tt.cfg)
			require.NoError(t, err)
			assert.NotNil(t, log)
		})
	}
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		level    string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"DEBUG", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"fatal", zapcore.FatalLevel},
		{"unknown", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected, levelFor(tt.level))
		})
	}
}

func TestNewSyncer(t *testing.T) {
	for _, output := range []string{"stdout", "stderr", "STDOUT", ""} {
		assert.NotNil(t, newSyncer(output))
	}
}

func TestNewSyncerFile(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "test-log-*.log")
	require.NoError(t, err)
	defer os.Remove(tmpFile.Name())
	tmpFile.Close()

	assert.NotNil(t, newSyncer(tmpFile.Name()))
}

func TestNewSyncerUnwritableFileFallsBack(t *testing.T) {
	// A directory path cannot be opened as a file; the syncer must still work.
	assert.NotNil(t, newSyncer(os.TempDir()))
}

func TestNewEncoder(t *testing.T) {
	for _, format := range []string{"console", "json"} {
		cfg := &Config{
			Level:      "info",
			Format:     format,
			Output:     "stdout",
			TimeFormat: "2006-01-02T15:04:05Z07:00",
		}
		assert.NotNil(t, newEncoder(cfg))
	}
}

func TestSync(t *testing.T) {
	log, err := New(DefaultConfig())
	require.NoError(t, err)

	// Sync on stdout may fail on some platforms; it must not panic.
	_ = Sync(log)
}

func TestJSONFieldNames(t *testing.T) {
	var buf bytes.Buffer

	cfg := &Config{Level: "info", Format: "json", TimeFormat: "2006-01-02T15:04:05Z07:00"}
	core := zapcore.NewCore(newEncoder(cfg), zapcore.AddSync(&buf), zapcore.InfoLevel)
	log := zap.New(core)

	log.Info("payment recorded", zap.String("payment_number", "CAS-202603-0001"))

	var output map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &output))

	assert.Equal(t, "payment recorded", output["msg"])
	assert.Equal(t, "info", output["level"])
	assert.Equal(t, "CAS-202603-0001", output["payment_number"])
	assert.Contains(t, output, "time")
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer

	cfg := &Config{Level: "info", Format: "json", TimeFormat: "2006-01-02T15:04:05Z07:00"}
	core := zapcore.NewCore(newEncoder(cfg), zapcore.AddSync(&buf), levelFor(cfg.Level))
	log := zap.New(core)

	log.Debug("should be dropped")
	assert.Empty(t, buf.String())

	log.Info("should be kept")
	assert.Contains(t, buf.String(), "should be kept")
}
