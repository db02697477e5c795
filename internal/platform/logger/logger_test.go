package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"compliance-panel/internal/platform/config"
)

func TestNewWithWriter(t *testing.T) {
	t.Run("json at info drops debug", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewWithWriter(&buf, config.LogConfig{Level: "info", Format: "json"})
		log.Debug("hidden")
		log.Info("shown", "country", "de")
		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), `"country":"de"`)
		assert.Contains(t, buf.String(), `"service":"compliance-panel"`)
	})

	t.Run("text at debug", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewWithWriter(&buf, config.LogConfig{Level: "DEBUG", Format: "text"})
		log.Debug("device locator failed")
		assert.Contains(t, buf.String(), "level=DEBUG")
	})
}
