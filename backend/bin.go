package backend

import (
	"image"
	"log"
	"os"

	"multivision/backend/media"
)

// BinItem is one cataloged asset: its path plus an optional thumbnail.
type BinItem struct {
	Path      string
	Thumbnail image.Image
}

// ProjectBin is the asset catalog of a project, grouped into the four fixed
// categories STILLS, VIDEO, AUDIO and TRACKS.
type ProjectBin struct {
	items map[string][]BinItem

	itemAdded []func(category, path string)
	resets    []func()
}

func NewProjectBin() *ProjectBin {
	b := &ProjectBin{}
	b.reset()
	return b
}

func (b *ProjectBin) reset() {
	b.items = map[string][]BinItem{
		media.CategoryStills: nil,
		media.CategoryVideo:  nil,
		media.CategoryAudio:  nil,
		media.CategoryTracks: nil,
	}
}

// OnItemAdded registers a listener invoked after an asset is cataloged.
func (b *ProjectBin) OnItemAdded(fn func(category, path string)) {
	b.itemAdded = append(b.itemAdded, fn)
}

// OnReset registers a listener invoked after the bin is cleared.
func (b *ProjectBin) OnReset(fn func()) {
	b.resets = append(b.resets, fn)
}

// Clear empties all categories.
func (b *ProjectBin) Clear() {
	b.reset()
	for _, fn := range b.resets {
		fn()
	}
}

// Add catalogs an asset under a category. Unknown categories are rejected.
func (b *ProjectBin) Add(category, path string, thumbnail image.Image) bool {
	if _, ok := b.items[category]; !ok {
		log.Printf("Unknown bin category %q for %s", category, path)
		return false
	}
	b.items[category] = append(b.items[category], BinItem{Path: path, Thumbnail: thumbnail})
	for _, fn := range b.itemAdded {
		fn(category, path)
	}
	return true
}

// Items returns the assets of one category in insertion order.
func (b *ProjectBin) Items(category string) []BinItem {
	return b.items[category]
}

// Count returns the total number of cataloged assets.
func (b *ProjectBin) Count() int {
	n := 0
	for _, items := range b.items {
		n += len(items)
	}
	return n
}

// ToJSON returns the bin as a category-to-paths map, the form embedded in
// project files. Thumbnails are never persisted; they are re-derived on load.
func (b *ProjectBin) ToJSON() map[string][]string {
	out := make(map[string][]string, len(b.items))
	for category, items := range b.items {
		paths := make([]string, 0, len(items))
		for _, item := range items {
			paths = append(paths, item.Path)
		}
		out[category] = paths
	}
	return out
}

// FromJSON re-catalogs assets from the persisted category map. Unknown
// categories are skipped with a warning. An asset file that no longer exists
// is still cataloged, so the project keeps its references while the user
// relinks the files.
func (b *ProjectBin) FromJSON(data map[string][]string) {
	for category, paths := range data {
		if _, ok := b.items[category]; !ok {
			log.Printf("Skipping unknown bin category %q in project file", category)
			continue
		}
		for _, path := range paths {
			if _, err := os.Stat(path); err != nil {
				log.Printf("Bin asset %s is missing on disk", path)
			}
			b.Add(category, path, binThumbnail(category, path))
		}
	}
}

// binThumbnail derives the catalog thumbnail for an asset: a scaled copy for
// stills, a keyframe for video, a solid tile for audio, none for tracks.
func binThumbnail(category, path string) image.Image {
	switch category {
	case media.CategoryStills:
		img, err := media.LoadImage(path)
		if err != nil {
			log.Printf("Could not load thumbnail for %s: %v", path, err)
			return media.SolidPlaceholder()
		}
		return media.Scaled(img, media.IconSize)
	case media.CategoryVideo:
		img, err := media.Keyframe(path)
		if err != nil {
			log.Printf("Could not extract keyframe for %s: %v", path, err)
			return media.SolidPlaceholder()
		}
		return media.Scaled(img, media.IconSize)
	case media.CategoryAudio:
		return media.SolidPlaceholder()
	}
	return nil
}
