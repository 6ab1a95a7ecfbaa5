package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductionLoggerEmitsJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "production")

	log.Info("decision recorded", "onboarding_id", "abc")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "decision recorded", line["msg"])
	assert.Equal(t, "abc", line["onboarding_id"])
}

func TestDevelopmentLoggerIncludesDebug(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "development")

	log.Debug("template cache miss")

	assert.Contains(t, buf.String(), "template cache miss")
}
