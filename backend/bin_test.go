package backend

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"multivision/backend/media"
)

func writeTestPNG(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, 8, 8))))
}

func TestBinAddAndItems(t *testing.T) {
	b := NewProjectBin()

	var added []string
	b.OnItemAdded(func(category, path string) {
		added = append(added, category+":"+path)
	})

	assert.True(t, b.Add(media.CategoryStills, "/a.jpg", nil))
	assert.True(t, b.Add(media.CategoryAudio, "/m.mp3", nil))
	assert.False(t, b.Add("POSTERS", "/p.jpg", nil))

	assert.Len(t, b.Items(media.CategoryStills), 1)
	assert.Len(t, b.Items(media.CategoryAudio), 1)
	assert.Equal(t, 2, b.Count())
	assert.Equal(t, []string{"STILLS:/a.jpg", "AUDIO:/m.mp3"}, added)
}

func TestBinClear(t *testing.T) {
	b := NewProjectBin()
	b.Add(media.CategoryStills, "/a.jpg", nil)

	resets := 0
	b.OnReset(func() { resets++ })

	b.Clear()

	assert.Equal(t, 0, b.Count())
	assert.Equal(t, 1, resets)
}

func TestBinJSONRoundTrip(t *testing.T) {
	dir := t.TempDir()
	still := filepath.Join(dir, "a.png")
	writeTestPNG(t, still)

	b := NewProjectBin()
	b.Add(media.CategoryStills, still, nil)
	b.Add(media.CategoryTracks, filepath.Join(dir, "tour.gpx"), nil)

	data := b.ToJSON()
	assert.Equal(t, []string{still}, data[media.CategoryStills])

	loaded := NewProjectBin()
	loaded.FromJSON(data)

	assert.Equal(t, 2, loaded.Count())
	items := loaded.Items(media.CategoryStills)
	require.Len(t, items, 1)
	assert.Equal(t, still, items[0].Path)
	assert.NotNil(t, items[0].Thumbnail, "stills get a thumbnail on load")
}

func TestBinFromJSONUnknownCategory(t *testing.T) {
	b := NewProjectBin()
	b.FromJSON(map[string][]string{
		"POSTERS":            {"/p.jpg"},
		media.CategoryTracks: {"/tour.gpx"},
	})

	assert.Equal(t, 1, b.Count())
	assert.Len(t, b.Items(media.CategoryTracks), 1)
}

func TestBinFromJSONMissingFileStillCataloged(t *testing.T) {
	b := NewProjectBin()
	b.FromJSON(map[string][]string{
		media.CategoryAudio: {"/gone/music.mp3"},
	})

	items := b.Items(media.CategoryAudio)
	require.Len(t, items, 1)
	assert.Equal(t, "/gone/music.mp3", items[0].Path)
}
