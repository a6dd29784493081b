package main

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sketch-critic/internal/feedback"
	"sketch-critic/internal/gallery"
	"sketch-critic/internal/raster"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, vars map[string]string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(func(k string) string { return vars[k] }, &out, &errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeImage(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	path := filepath.Join(t.TempDir(), "in.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func proxy(t *testing.T, got *feedback.Context) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Image   string           `json:"image"`
			Context feedback.Context `json:"context"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Image == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		*got = req.Context
		_ = json.NewEncoder(w).Encode(map[string]string{"feedback": "Strong gesture."})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCritiqueCommand(t *testing.T) {
	var got feedback.Context
	srv := proxy(t, &got)
	dir := t.TempDir()
	vars := map[string]string{"SKETCH_FEEDBACK_URL": srv.URL, "SKETCH_GALLERY_DIR": dir}

	out, err := run(t, vars, "critique", writeImage(t, 8, 8), "--subject", "hand", "--save", "--title", "Hand study")
	require.NoError(t, err)
	assert.Equal(t, "Strong gesture.\n", out)
	assert.Equal(t, "hand", got.Subject)

	store, err := gallery.Open(dir, hclog.NewNullLogger())
	require.NoError(t, err)
	list := store.List()
	require.Len(t, list, 1)
	assert.Equal(t, "Hand study", list[0].Title)
	assert.Equal(t, "Strong gesture.", list[0].Latest())
	assert.Equal(t, "hand", list[0].Context.Subject)

	out, err = run(t, vars, "gallery", "list")
	require.NoError(t, err)
	assert.Contains(t, out, list[0].ID)
	assert.Contains(t, out, "Hand study")

	out, err = run(t, vars, "gallery", "show", list[0].ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Strong gesture.")
	assert.Contains(t, out, "subject:  hand")

	_, err = run(t, vars, "gallery", "rename", list[0].ID, "Left hand")
	require.NoError(t, err)
	_, err = run(t, vars, "gallery", "delete", list[0].ID)
	require.NoError(t, err)
	require.NoError(t, store.Reload())
	assert.Empty(t, store.List())
}

func TestCritiqueCommandWithoutCredentials(t *testing.T) {
	_, err := run(t, map[string]string{"SKETCH_GALLERY_DIR": t.TempDir()}, "critique", writeImage(t, 4, 4))
	require.Error(t, err)
	assert.True(t, feedback.IsKind(err, feedback.KindMissingCredentials))
}

func TestGalleryShowUnknown(t *testing.T) {
	_, err := run(t, map[string]string{"SKETCH_GALLERY_DIR": t.TempDir()}, "gallery", "show", "nope")
	assert.ErrorIs(t, err, gallery.ErrNotFound)
}

func TestGalleryFlagOverridesEnv(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "other")
	_, err := run(t, map[string]string{"SKETCH_GALLERY_DIR": t.TempDir()}, "--gallery", dir, "gallery", "list")
	require.NoError(t, err)
	assert.DirExists(t, dir)
}

func TestThumbnailCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "thumb.png")
	stdout, err := run(t, nil, "thumbnail", writeImage(t, 40, 20), out, "--size", "10")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(stdout, ": 10x5\n"))

	img, err := raster.Load(out)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(10, 5), img.Bounds().Size())
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, nil, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "sketchctl "))
}
