package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerWritesFields(t *testing.T) {
	var buf bytes.Buffer
	log := newWithWriter(&buf, "debug")

	log.WithFields(map[string]interface{}{"lead_id": "l-1", "to": "ATRIBUIDA"}).Info("status alterado")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "status alterado", entry["message"])
	assert.Equal(t, "l-1", entry["lead_id"])
	assert.Equal(t, "ls-leads", entry["service"])
}

func TestWithFieldsDoesNotLeakIntoParent(t *testing.T) {
	var buf bytes.Buffer
	base := newWithWriter(&buf, "info")

	_ = base.WithFields(map[string]interface{}{"k": "v"})
	base.Info("sem campos")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	_, present := entry["k"]
	assert.False(t, present)
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := newWithWriter(&buf, "warn")

	log.Info("ignorado")
	assert.Zero(t, buf.Len())

	log.Warn("registrado")
	assert.NotZero(t, buf.Len())
}
