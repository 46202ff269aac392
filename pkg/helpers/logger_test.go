package helpers

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerStampsAppName(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("market", "production", "")
	logger.SetOutput(&buf)

	logger.WithField("order_id", "o1").Info("accepted")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "market", line["app"])
	assert.Equal(t, "o1", line["order_id"])
	assert.Equal(t, "info", line["level"])
}

func TestNewLoggerLevels(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, NewLogger("a", "development", "").GetLevel())
	assert.Equal(t, logrus.InfoLevel, NewLogger("a", "production", "").GetLevel())
	assert.Equal(t, logrus.WarnLevel, NewLogger("a", "production", "warn").GetLevel())
	assert.Equal(t, logrus.InfoLevel, NewLogger("a", "production", "loud").GetLevel())
}
