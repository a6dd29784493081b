package layers

import (
	"image"
	"testing"

	"sketch-critic/internal/raster"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(s *Store) []string {
	var out []string
	for _, l := range s.Layers() {
		out = append(out, l.Name)
	}
	return out
}

func TestAddInsertRemove(t *testing.T) {
	s := NewStore()
	a, b, c := New("a"), New("b"), New("c")

	_, err := s.Add(a)
	require.NoError(t, err)
	idx, err := s.Add(c)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	require.NoError(t, s.Insert(b, 1))
	assert.Equal(t, []string{"a", "b", "c"}, names(s))

	assert.ErrorIs(t, s.Insert(b, 0), ErrDuplicate)

	s.Select(2)
	removed, at, ok := s.Remove(c.ID)
	require.True(t, ok)
	assert.Equal(t, 2, at)
	assert.Equal(t, c.ID, removed.ID)
	assert.Equal(t, 1, s.SelectedIndex(), "selection re-clamped")

	_, _, ok = s.Remove(c.ID)
	assert.False(t, ok)
}

func TestReinsertRestoresIdentity(t *testing.T) {
	s := NewStore()
	a := New("a")
	a.Opacity = 0.4
	a.Blend = raster.BlendScreen
	_, _ = s.Add(a)
	_, _ = s.Add(New("b"))

	removed, at, ok := s.Remove(a.ID)
	require.True(t, ok)
	require.NoError(t, s.Insert(removed, at))

	got, ok := s.At(0)
	require.True(t, ok)
	assert.Equal(t, a, got)
}

func TestMove(t *testing.T) {
	s := NewStore()
	for _, n := range []string{"a", "b", "c", "d"} {
		_, _ = s.Add(New(n))
	}
	require.NoError(t, s.Move(0, 2))
	assert.Equal(t, []string{"b", "c", "a", "d"}, names(s))
	require.NoError(t, s.Move(2, 0))
	assert.Equal(t, []string{"a", "b", "c", "d"}, names(s))
	require.NoError(t, s.Move(3, 1))
	assert.Equal(t, []string{"a", "d", "b", "c"}, names(s))
	assert.ErrorIs(t, s.Move(0, 4), ErrNotFound)
}

func TestSetThumbnailDropsMissingLayer(t *testing.T) {
	s := NewStore()
	l := New("a")
	_, _ = s.Add(l)

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	assert.True(t, s.SetThumbnail(l.ID, img))
	got, _ := s.Get(l.ID)
	assert.Same(t, img, got.Thumbnail)

	assert.False(t, s.SetThumbnail(NewID(), img))
}

func TestEnsureOneAndReset(t *testing.T) {
	s := NewStore()
	assert.True(t, s.EnsureOne(New(DefaultName(1))))
	assert.False(t, s.EnsureOne(New("extra")))
	assert.Equal(t, []string{"Layer 1"}, names(s))

	old := s.Reset()
	assert.Len(t, old, 1)
	assert.Zero(t, s.Len())
	_, ok := s.Selected()
	assert.False(t, ok)
}

func TestPropertyApply(t *testing.T) {
	l := New("x")
	l.Apply(PropOpacity, PropertyValue{Opacity: 3})
	assert.Equal(t, 1.0, l.Opacity)
	l.Apply(PropBlendMode, PropertyValue{Blend: raster.BlendMultiply})
	assert.Equal(t, PropertyValue{Blend: raster.BlendMultiply}, l.Value(PropBlendMode))
	l.Apply(PropVisibility, PropertyValue{Visible: false})
	assert.False(t, l.Visible)
	assert.Equal(t, "Blend Mode", PropBlendMode.String())
}
