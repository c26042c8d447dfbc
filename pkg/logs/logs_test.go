package logs

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/medchart/config"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warn"))
	assert.Equal(t, slog.LevelInfo, parseLevel("bogus"))
}

func TestNewWritesToRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "medchart.log")
	cfg := &config.Config{}
	cfg.Logging.Level = "info"
	cfg.Logging.Format = "json"
	cfg.Logging.Output.File = config.FileLogConfig{Enabled: true, Path: path, MaxSizeMB: 1}
	cfg.Server.Environment = "test"

	logger, stop := New(cfg)
	defer stop()
	logger.Debug("hidden")
	logger.Info("tab opened", "patient_id", 7)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"tab opened"`)
	assert.Contains(t, string(data), `"service":"medchart"`)
	assert.Contains(t, string(data), `"env":"test"`)
	assert.NotContains(t, string(data), "hidden")
}

func TestNewFansOutToFileAndStdout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "medchart.log")
	cfg := &config.Config{}
	cfg.Logging.Output.Stdout = true
	cfg.Logging.Output.File = config.FileLogConfig{Enabled: true, Path: path}

	logger, stop := New(cfg)
	defer stop()
	logger.Warn("slow refetch")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "slow refetch")
}
