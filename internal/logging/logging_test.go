package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/jrsteele09/forecast-dashboard/internal/logging"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})

	t.Run("json outside dev", func(t *testing.T) {
		var buf bytes.Buffer
		require.Equal(t, zerolog.WarnLevel, logging.Setup("WARN", "PROD", &buf))

		log.Info().Msg("hidden")
		log.Warn().Str("k", "v").Msg("shown")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		require.Equal(t, "shown", entry["message"])
		require.Equal(t, "v", entry["k"])
	})

	t.Run("console in dev", func(t *testing.T) {
		var buf bytes.Buffer
		logging.Setup("debug", "dev", &buf)
		log.Debug().Msg("hello")
		require.Contains(t, buf.String(), "hello")
		require.False(t, json.Valid(buf.Bytes()))
	})

	t.Run("unknown level", func(t *testing.T) {
		require.Equal(t, zerolog.InfoLevel, logging.Setup("loud", "PROD", &bytes.Buffer{}))
	})
}
