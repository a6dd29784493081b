package app

import (
	"bytes"
	"testing"

	"sketch-critic/internal/feedback"
	"sketch-critic/internal/viewport"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadConfigDefaults(t *testing.T) {
	c := LoadConfigFrom(env(nil))
	assert.Equal(t, viewport.DefaultDocumentSize, c.DocumentSize)
	assert.Equal(t, "info", c.LogLevel)
	assert.False(t, c.LogJSON)
	assert.NotEmpty(t, c.GalleryDir)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	c := LoadConfigFrom(env(map[string]string{
		"SKETCH_DOC_SIZE":     "1024",
		"SKETCH_FEEDBACK_URL": " https://critic.example/api ",
		"SKETCH_GALLERY_DIR":  "/tmp/gallery",
		"LOG_LEVEL":           "DEBUG",
		"LOG_JSON":            "true",
	}))
	assert.Equal(t, 1024, c.DocumentSize)
	assert.Equal(t, "https://critic.example/api", c.FeedbackURL)
	assert.Equal(t, "/tmp/gallery", c.GalleryDir)
	assert.Equal(t, "debug", c.LogLevel)
	assert.True(t, c.LogJSON)
}

func TestLoadConfigRejectsBadDocumentSize(t *testing.T) {
	for _, v := range []string{"abc", "10", "100000", "-5"} {
		c := LoadConfigFrom(env(map[string]string{"SKETCH_DOC_SIZE": v}))
		assert.Equal(t, viewport.DefaultDocumentSize, c.DocumentSize, v)
	}
}

func TestConfigCriticSelection(t *testing.T) {
	proxy, err := Config{FeedbackURL: "https://critic.example", OpenAIKey: "sk"}.Critic()
	require.NoError(t, err)
	assert.IsType(t, &feedback.ProxyClient{}, proxy)

	direct, err := Config{OpenAIKey: "sk"}.Critic()
	require.NoError(t, err)
	assert.IsType(t, &feedback.OpenAIClient{}, direct)

	_, err = Config{}.Critic()
	assert.True(t, feedback.IsKind(err, feedback.KindMissingCredentials))
}

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := Config{LogLevel: "warn"}.NewLogger("canvas", &buf)
	logger.Info("hidden")
	logger.Warn("shown", "layer", "abc")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "canvas")
	assert.Contains(t, out, "layer=abc")

	buf.Reset()
	Config{LogLevel: "bogus", LogJSON: true}.NewLogger("x", &buf).Info("hello")
	assert.Contains(t, buf.String(), `"@message":"hello"`)
}
