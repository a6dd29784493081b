package gallery

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"sketch-critic/internal/feedback"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})
	return img
}

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), nil)
	require.NoError(t, err)
	return s
}

func TestSaveAndReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, nil)
	require.NoError(t, err)

	fc := feedback.Context{Style: "ink", Subject: "cat"}
	d, err := s.Save("  Cat study ", testImage(), fc)
	require.NoError(t, err)
	assert.Equal(t, "Cat study", d.Title)
	assert.NotEmpty(t, d.ID)
	assert.FileExists(t, filepath.Join(dir, d.ID+".png"))

	_, err = s.AddFeedback(d.ID, "Good gesture.")
	require.NoError(t, err)
	_, err = s.AddFeedback(d.ID, "Watch the ears.")
	require.NoError(t, err)

	again, err := Open(dir, nil)
	require.NoError(t, err)
	got, err := again.Get(d.ID)
	require.NoError(t, err)
	assert.Equal(t, fc, got.Context)
	require.Len(t, got.Feedback, 2)
	assert.Equal(t, "Good gesture.", got.Feedback[0].Text)
	assert.Equal(t, "Watch the ears.", got.Latest())

	img, err := again.LoadImage(d.ID)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(4, 3), img.Bounds().Size())
	r, _, _, _ := img.At(1, 1).RGBA()
	assert.Equal(t, uint32(200*0x101), r)
}

func TestSaveDefaultsAndErrors(t *testing.T) {
	s := openStore(t)
	d, err := s.Save("", testImage(), feedback.Context{})
	require.NoError(t, err)
	assert.Equal(t, "Untitled", d.Title)

	_, err = s.Save("x", nil, feedback.Context{})
	assert.ErrorIs(t, err, ErrNoImage)

	_, err = s.AddFeedback(d.ID, "   ")
	assert.ErrorIs(t, err, ErrEmptyText)
	_, err = s.AddFeedback("missing", "text")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.LoadImage("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReturnedDrawingsAreCopies(t *testing.T) {
	s := openStore(t)
	d, err := s.Save("a", testImage(), feedback.Context{})
	require.NoError(t, err)
	_, err = s.AddFeedback(d.ID, "one")
	require.NoError(t, err)

	got, _ := s.Get(d.ID)
	got.Title = "changed"
	got.Feedback[0].Text = "changed"

	fresh, _ := s.Get(d.ID)
	assert.Equal(t, "a", fresh.Title)
	assert.Equal(t, "one", fresh.Feedback[0].Text)
}

func TestListOrdersByModified(t *testing.T) {
	s := openStore(t)
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	first, err := s.Save("first", testImage(), feedback.Context{})
	require.NoError(t, err)
	second, err := s.Save("second", testImage(), feedback.Context{})
	require.NoError(t, err)

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)

	_, err = s.AddFeedback(first.ID, "bump")
	require.NoError(t, err)
	assert.Equal(t, first.ID, s.List()[0].ID)

	require.NoError(t, s.Rename(first.ID, "renamed"))
	got, _ := s.Get(first.ID)
	assert.Equal(t, "renamed", got.Title)
}

func TestDelete(t *testing.T) {
	s := openStore(t)
	d, err := s.Save("gone", testImage(), feedback.Context{})
	require.NoError(t, err)
	keep, err := s.Save("kept", testImage(), feedback.Context{})
	require.NoError(t, err)

	require.NoError(t, s.Delete(d.ID))
	assert.NoFileExists(t, filepath.Join(s.Dir(), d.ID+".png"))
	assert.ErrorIs(t, s.Delete(d.ID), ErrNotFound)

	list := s.List()
	require.Len(t, list, 1)
	assert.Equal(t, keep.ID, list[0].ID)
}

func TestOpenRejectsNewerVersion(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, IndexFile), []byte(`{"version": 99}`), 0644))
	_, err := Open(dir, nil)
	assert.ErrorIs(t, err, ErrBadVersion)

	require.NoError(t, os.WriteFile(filepath.Join(dir, IndexFile), []byte(`{`), 0644))
	_, err = Open(dir, nil)
	assert.Error(t, err)
}

func TestWatcherReloadsOnExternalChange(t *testing.T) {
	dir := t.TempDir()
	ui, err := Open(dir, nil)
	require.NoError(t, err)
	_, err = ui.Save("mine", testImage(), feedback.Context{})
	require.NoError(t, err)

	changes := 0
	w := NewWatcher(ui, time.Hour, func() { changes++ })
	assert.False(t, w.Check())

	cli, err := Open(dir, nil)
	require.NoError(t, err)
	_, err = cli.Save("theirs", testImage(), feedback.Context{})
	require.NoError(t, err)
	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(ui.IndexPath(), later, later))

	assert.True(t, w.Check())
	assert.Equal(t, 1, changes)
	assert.Len(t, ui.List(), 2)
	assert.False(t, w.Check())
}

func TestWatcherStartStop(t *testing.T) {
	s := openStore(t)
	w := NewWatcher(s, time.Millisecond, nil)
	w.Start()
	w.Start()
	w.Stop()
	w.Stop()
}
