package app

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"sketch-critic/internal/feedback"
	"sketch-critic/internal/viewport"

	"github.com/hashicorp/go-hclog"
)

// Config holds settings read from the environment.
type Config struct {
	DocumentSize int

	FeedbackURL string
	FeedbackKey string

	OpenAIKey     string
	OpenAIBaseURL string
	OpenAIModel   string

	GalleryDir string
	LogLevel   string
	LogJSON    bool
}

// LoadConfig reads the configuration from the process environment.
func LoadConfig() Config {
	return LoadConfigFrom(os.Getenv)
}

// LoadConfigFrom reads the configuration through getenv.
func LoadConfigFrom(getenv func(string) string) Config {
	c := Config{
		DocumentSize:  viewport.DefaultDocumentSize,
		FeedbackURL:   strings.TrimSpace(getenv("SKETCH_FEEDBACK_URL")),
		FeedbackKey:   getenv("SKETCH_FEEDBACK_KEY"),
		OpenAIKey:     getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: strings.TrimSpace(getenv("OPENAI_BASE_URL")),
		OpenAIModel:   strings.TrimSpace(getenv("OPENAI_MODEL")),
		GalleryDir:    getenv("SKETCH_GALLERY_DIR"),
		LogLevel:      strings.ToLower(strings.TrimSpace(getenv("LOG_LEVEL"))),
	}
	if v, err := strconv.Atoi(getenv("SKETCH_DOC_SIZE")); err == nil && v >= 64 && v <= 8192 {
		c.DocumentSize = v
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	c.LogJSON, _ = strconv.ParseBool(getenv("LOG_JSON"))
	if c.GalleryDir == "" {
		c.GalleryDir = DefaultGalleryDir()
	}
	return c
}

// DefaultGalleryDir returns the per-user gallery directory.
func DefaultGalleryDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "sketch-critic", "gallery")
}

// Critic returns the configured critique client: the proxy when a feedback
// URL is set, otherwise OpenAI directly when an API key is set.
func (c Config) Critic(opts ...feedback.Option) (feedback.Critic, error) {
	switch {
	case c.FeedbackURL != "":
		pc, err := feedback.NewProxyClient(c.FeedbackURL, c.FeedbackKey, opts...)
		if err != nil {
			return nil, err
		}
		return pc, nil
	case c.OpenAIKey != "":
		oc, err := feedback.NewOpenAIClient(c.OpenAIKey, c.OpenAIBaseURL, c.OpenAIModel, opts...)
		if err != nil {
			return nil, err
		}
		return oc, nil
	}
	return nil, &feedback.Error{Kind: feedback.KindMissingCredentials}
}

// NewLogger builds a named logger at the configured level.
func (c Config) NewLogger(name string, out io.Writer) hclog.Logger {
	if out == nil {
		out = os.Stderr
	}
	level := hclog.LevelFromString(c.LogLevel)
	if level == hclog.NoLevel {
		level = hclog.Info
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Level:      level,
		JSONFormat: c.LogJSON,
		Output:     out,
		TimeFormat: "2006-01-02T15:04:05Z",
		TimeFn: func() time.Time {
			return time.Now().UTC()
		},
	})
}
