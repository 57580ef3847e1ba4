package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithOutput(&buf, "debug", "json")
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	log.WithField("path", "/api/v1/post").Info("request")
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "request", line["msg"])
	assert.Equal(t, "/api/v1/post", line["path"])
}

func TestNewRejectsBadInput(t *testing.T) {
	_, err := New("loud", "text")
	assert.Error(t, err)

	_, err = New("info", "xml")
	assert.Error(t, err)
}
