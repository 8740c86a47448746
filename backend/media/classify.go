package media

import (
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
)

// Asset categories as they appear in the project bin and in project files.
const (
	CategoryStills = "STILLS"
	CategoryVideo  = "VIDEO"
	CategoryAudio  = "AUDIO"
	CategoryTracks = "TRACKS"
)

// CategoryForFile classifies a file into one of the bin categories by magic
// bytes, with a file-extension fallback for GPX tracks (plain XML, no usable
// magic). Returns false for files no category accepts.
func CategoryForFile(path string) (string, bool) {
	if strings.EqualFold(filepath.Ext(path), ".gpx") {
		return CategoryTracks, true
	}

	kind, err := filetype.MatchFile(path)
	if err != nil || kind == filetype.Unknown {
		return "", false
	}

	switch {
	case strings.HasPrefix(kind.MIME.Value, "image/"):
		return CategoryStills, true
	case strings.HasPrefix(kind.MIME.Value, "video/"):
		return CategoryVideo, true
	case strings.HasPrefix(kind.MIME.Value, "audio/"):
		return CategoryAudio, true
	}
	return "", false
}
