package cmd

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "gooze.dev/pkg/weave/internal/model"
)

func TestConfigConstants(t *testing.T) {
	assert.Equal(t, "weave", configBaseName)
	assert.Equal(t, "weave.yaml", configFileName)
	assert.Equal(t, ".", configFolderPath)
	assert.Equal(t, "output", outputFlagName)
	assert.Equal(t, "operators", operatorsFlagName)
	assert.Equal(t, "parallel", parallelFlagName)
	assert.Equal(t, "weave.operators", operatorsConfigKey)
	assert.Equal(t, "weave.track", trackConfigKey)
	assert.Equal(t, "weave.parallel", parallelConfigKey)
	assert.Equal(t, ".weave-out", defaultOutputDir)
	assert.Equal(t, 1, defaultParallel)
	assert.Equal(t, "WEAVE", envPrefix)
}

func TestConfigVersionConstants(t *testing.T) {
	assert.Equal(t, "version", configVersionKey)
	assert.Equal(t, 1, currentConfigVersion)
}

func TestParseSlogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelWarn},
		{"debug", slog.LevelDebug},
		{" INFO ", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"-4", slog.LevelDebug},
		{"loud", slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseSlogLevel(tt.in, slog.LevelWarn))
		})
	}
}

func TestWeaveConfig(t *testing.T) {
	t.Run("defaults enable every operator", func(t *testing.T) {
		config, err := weaveConfig()
		require.NoError(t, err)
		assert.Equal(t, m.AllOperators(), config.Operators)
	})

	t.Run("environment overrides operators", func(t *testing.T) {
		t.Setenv("WEAVE_WEAVE_OPERATORS", "aor ror")

		config, err := weaveConfig()
		require.NoError(t, err)
		assert.Equal(t, []m.OperatorKind{m.OperatorAOR, m.OperatorROR}, config.Operators)
	})

	t.Run("unknown operator", func(t *testing.T) {
		t.Setenv("WEAVE_WEAVE_OPERATORS", "xyz")

		_, err := weaveConfig()
		require.Error(t, err)
	})
}

func TestConfigureLogger(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	logPath := filepath.Join(t.TempDir(), "weave.log")
	configureLogger(logPath, true)

	require.NotNil(t, globalLogger)
	assert.True(t, globalLogger.Enabled(t.Context(), slog.LevelDebug))

	slog.Info("hello", "key", "value")

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "msg=hello")
	assert.Contains(t, string(data), "key=value")
}
