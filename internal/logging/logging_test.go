package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupJSON(t *testing.T) {
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })

	var buf bytes.Buffer
	setup(&buf, "warn", false)
	log.Info().Msg("hidden")
	logger := Component("store")
	logger.Warn().Str("symbol", "THYAO").Msg("visible")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "visible", entry["message"])
	assert.Equal(t, "store", entry["component"])
	assert.Equal(t, "THYAO", entry["symbol"])
}

func TestSetupUnknownLevel(t *testing.T) {
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })

	var buf bytes.Buffer
	setup(&buf, "loud", true)
	assert.Equal(t, zerolog.InfoLevel, log.Logger.GetLevel())
}
