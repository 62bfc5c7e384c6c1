package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLogger(t *testing.T) {
	t.Cleanup(func() {
		CloseLogFile()
		ResetGlobalConfigForTest()
		_ = InitLogger("info", false)
	})

	t.Run("console only", func(t *testing.T) {
		require.NoError(t, InitLogger("debug", false))
		assert.Equal(t, zerolog.DebugLevel, GetLogger().GetLevel())
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		require.NoError(t, InitLogger("shouting", false))
		assert.Equal(t, zerolog.InfoLevel, GetLogger().GetLevel())
	})

	t.Run("file sink", func(t *testing.T) {
		ResetGlobalConfigForTest()
		logPath := filepath.Join(t.TempDir(), "logs", "rolo.log")
		GetGlobalConfig().Logging.File = logPath

		require.NoError(t, InitLogger("debug", true))
		log := GetLogger()
		log.Debug().Str("component", "config").Msg("file sink check")
		CloseLogFile()

		data, err := os.ReadFile(logPath)
		require.NoError(t, err)
		assert.Contains(t, string(data), "file sink check")
	})
}

func TestSetLogLevel(t *testing.T) {
	t.Cleanup(func() { _ = InitLogger("info", false) })

	SetLogLevel("warn")
	assert.Equal(t, zerolog.WarnLevel, GetLogger().GetLevel())

	// Unparseable level degrades to info rather than failing.
	SetLogLevel("whisper")
	assert.Equal(t, zerolog.InfoLevel, GetLogger().GetLevel())
}
