package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWritesJSONWithService(t *testing.T) {
	var buf bytes.Buffer
	Init(Settings{Level: "debug"}, &buf)
	t.Cleanup(CloseLogger)

	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	buf.Reset()
	log.Debug().Int64("order_id", 42).Msg("order accepted")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "limit-order-book", entry["service"])
	assert.Equal(t, "order accepted", entry["message"])
	assert.EqualValues(t, 42, entry["order_id"])
}

func TestInitFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	Init(Settings{Level: "chatty"}, &buf)
	t.Cleanup(CloseLogger)

	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestInitMirrorsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.log")

	var buf bytes.Buffer
	Init(Settings{Level: "info", File: path}, &buf)
	log.Info().Msg("to both")
	CloseLogger()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(raw), "to both"))
	assert.Contains(t, buf.String(), "to both")
}
