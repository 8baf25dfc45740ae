package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/axiomhq/axiom-go/axiom"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWritesJSONToFileAndStdout(t *testing.T) {
	var out bytes.Buffer
	file := filepath.Join(t.TempDir(), "logs", "app.log")
	require.NoError(t, Init(Options{Level: "info", File: file, Stdout: &out}))
	defer Close()

	log.Info().Str("stage", "bind").Msg("lesson plan generated")
	log.Debug().Msg("hidden")

	var ev map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(out.Bytes()), &ev))
	assert.Equal(t, "lesson plan generated", ev["message"])
	assert.Equal(t, DefaultService, ev["service"])
	assert.Equal(t, "bind", ev["stage"])

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "lesson plan generated")
	assert.NotContains(t, string(data), "hidden")
}

func TestInitBadLevelDefaultsToInfo(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Init(Options{Level: "loud", Stdout: &out, Service: "cli"}))
	defer Close()
	log.Debug().Msg("hidden")
	log.Warn().Msg("shown")
	assert.Equal(t, 1, strings.Count(out.String(), "\n"))
	assert.Contains(t, out.String(), `"service":"cli"`)
}

func TestForChat(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Init(Options{Stdout: &out}))
	defer Close()
	l := ForChat(42, "req-1")
	l.Info().Msg("x")
	assert.Contains(t, out.String(), `"chat_id":42`)
	assert.Contains(t, out.String(), `"request_id":"req-1"`)
}

func TestAxiomWriterDropsDebug(t *testing.T) {
	w := &axiomWriter{client: &axiomClient{ch: make(chan axiom.Event, 2)}, service: "svc"}
	_, _ = w.Write([]byte(`{"level":"debug","message":"d"}`))
	_, _ = w.Write([]byte(`{"level":"info","message":"i"}`))
	require.Len(t, w.client.ch, 1)
	ev := <-w.client.ch
	assert.Equal(t, "svc", ev["service"])
}
