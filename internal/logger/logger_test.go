package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(Config{Level: "debug", Format: "json"}, &buf)
	defer InitWithWriter(Config{}, &bytes.Buffer{})

	Info().Str("op", "analyze").Int64("applicant_id", 7).Msg("done")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "analyze", entry["op"])
	assert.EqualValues(t, 7, entry["applicant_id"])
	assert.Equal(t, "done", entry["message"])
}

func TestInitWithWriter_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(Config{Level: "warn"}, &buf)
	defer InitWithWriter(Config{}, &bytes.Buffer{})

	Info().Msg("hidden")
	assert.Empty(t, buf.String())

	Warn().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestInitWithWriter_BadLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(Config{Level: "loud"}, &buf)
	defer InitWithWriter(Config{}, &bytes.Buffer{})

	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(Config{Level: "info"}, &bytes.Buffer{})

	assert.Equal(t, &Logger, FromContext(context.Background()))

	reqLogger := zerolog.New(&buf).With().Str("request_id", "abc").Logger()
	ctx := WithContext(context.Background(), reqLogger)
	FromContext(ctx).Info().Msg("hello")

	assert.Contains(t, buf.String(), `"request_id":"abc"`)
}
