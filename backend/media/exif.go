package media

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// tagCollector accumulates EXIF fields into a flat map during a Walk.
type tagCollector struct {
	tags map[string]string
}

func (c *tagCollector) Walk(name exif.FieldName, tag *tiff.Tag) error {
	c.tags["EXIF:"+string(name)] = tag.String()
	return nil
}

// ExifTags extracts a flat key/value metadata map from an image file.
// Keys are prefixed with "EXIF:"; the file name is always present under
// "File:FileName", and the capture time (when available) is normalized to
// "EXIF:CreateDate" so callers have a single key to sort by.
func ExifTags(path string) (map[string]string, error) {
	tags := map[string]string{"File:FileName": filepath.Base(path)}

	f, err := os.Open(path)
	if err != nil {
		return tags, err
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return tags, fmt.Errorf("failed to decode EXIF data from %s: %w", path, err)
	}

	c := &tagCollector{tags: tags}
	if err := x.Walk(c); err != nil {
		return tags, err
	}

	if t, err := x.DateTime(); err == nil {
		tags["EXIF:CreateDate"] = t.Format("2006:01:02 15:04:05")
	}

	return tags, nil
}
