package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestZerologAdapter_WritesComponentAndFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerolog(&buf, zerolog.InfoLevel)

	log.Info("pipeline", "labels ready", map[string]interface{}{"flipped": 3})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "info", entry["level"])
	require.Equal(t, "pipeline", entry["component"])
	require.Equal(t, "labels ready", entry["message"])
	require.Equal(t, float64(3), entry["flipped"])
}

func TestZerologAdapter_Error(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerolog(&buf, zerolog.InfoLevel)

	log.Error("bot", errors.New("boom"), nil)
	require.Contains(t, buf.String(), `"error":"boom"`)
}

func TestZerologAdapter_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerolog(&buf, zerolog.WarnLevel)

	log.Debug("x", "hidden", nil)
	log.Info("x", "hidden", nil)
	require.Zero(t, buf.Len())

	log.Warning("x", "shown", nil)
	require.Contains(t, buf.String(), "shown")
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	require.Equal(t, zerolog.WarnLevel, ParseLevel(" warn "))
	require.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	require.Equal(t, zerolog.InfoLevel, ParseLevel("loud"))
}
