package backend

import (
	"encoding/json"
	"image"
	"log"

	"github.com/google/uuid"

	"multivision/backend/media"
)

// SceneType tags the kind of content a scene shows. The numeric values are
// part of the project file format.
type SceneType int

const (
	SceneTypeEmpty SceneType = 0
	SceneTypeStill SceneType = 1
	SceneTypeVideo SceneType = 2
	SceneTypeMap   SceneType = 3
)

// ShowState is the playback state of a show. The numeric values are part of
// the project file format.
type ShowState int

const (
	ShowStopped  ShowState = 0
	ShowRunning  ShowState = 1
	ShowPaused   ShowState = 2
	ShowFinished ShowState = 3
)

// String returns the human-readable state name carried by state-changed
// events.
func (s ShowState) String() string {
	switch s {
	case ShowStopped:
		return "stopped"
	case ShowRunning:
		return "running"
	case ShowPaused:
		return "paused"
	case ShowFinished:
		return "finished"
	}
	return "unknown"
}

// Scene is one slot in a show: a visual source, an optional background audio
// track, and the timing fields that control how long it stays on screen.
//
// Duration semantics: -1 uses the project's default delay, 0 is an explicit
// stop marker, positive values are milliseconds. InPoint/OutPoint are only
// meaningful for video scenes; -1 means unset.
type Scene struct {
	ID              uuid.UUID
	Source          string
	SourceHash      string
	AudioSource     string
	AudioSourceHash string
	Type            SceneType
	Pause           bool // reserved, not acted on yet
	Duration        int
	InPoint         int
	OutPoint        int
	PlayVideoAudio  bool
	Notes           string
	Exif            map[string]string
	Preview         image.Image
	Icon            image.Image
}

// NewScene creates a scene for a source file. The source is fingerprinted
// best-effort: a missing file leaves the hash empty and logs a warning. The
// icon is derived from the preview.
func NewScene(source string, sceneType SceneType, preview image.Image) *Scene {
	s := &Scene{
		ID:       uuid.New(),
		Source:   source,
		Type:     sceneType,
		Duration: -1,
		InPoint:  -1,
		OutPoint: -1,
		Preview:  preview,
	}

	if s.Source != "" {
		hash, err := FileHashSHA1(s.Source)
		if err != nil {
			log.Printf("Source file %s not found for scene %s", s.Source, s.ID)
		} else {
			s.SourceHash = hash
		}
	}

	if preview != nil {
		s.Icon = media.Scaled(preview, media.IconSize)
	}

	return s
}

// SetAudioSource assigns the background audio track and refreshes its
// fingerprint.
func (s *Scene) SetAudioSource(path string) {
	s.AudioSource = path
	s.AudioSourceHash = ""
	if path == "" {
		return
	}
	hash, err := FileHashSHA1(path)
	if err != nil {
		log.Printf("Audio source file %s not found for scene %s", path, s.ID)
		return
	}
	s.AudioSourceHash = hash
}

// DwellMillis computes how long the scene stays on screen during playback.
// A valid in/out interval wins, then the project default for -1, then the
// explicit duration verbatim (including 0, an instant cut).
func (s *Scene) DwellMillis(defaultDelay int) int {
	if s.InPoint >= 0 && s.InPoint < s.OutPoint {
		return s.OutPoint - s.InPoint
	}
	if s.Duration == -1 {
		return defaultDelay
	}
	return s.Duration
}

// EditableColumn reports whether the given sequence column may be edited for
// this scene. Only the in/out point columns of video scenes are editable.
func (s *Scene) EditableColumn(col int) bool {
	return (col == ColInPoint || col == ColOutPoint) && s.Type == SceneTypeVideo
}

// CaptureTime returns the capture-time metadata used for display and sorting,
// or "" when the scene has none.
func (s *Scene) CaptureTime() string {
	if s.Exif == nil {
		return ""
	}
	if v, ok := s.Exif["EXIF:CreateDate"]; ok {
		return v
	}
	if v, ok := s.Exif["QuickTime:CreateDate"]; ok {
		return v
	}
	return ""
}

// DisplayName is the name shown in the visual-source column: the file name
// from metadata when present, the raw source path otherwise.
func (s *Scene) DisplayName() string {
	if s.Exif != nil {
		if v, ok := s.Exif["File:FileName"]; ok {
			return v
		}
	}
	return s.Source
}

// sceneRecord is the wire form of a scene inside a project file. Optional
// fields are pointers so that records written by older versions load with the
// constructor defaults instead of failing.
type sceneRecord struct {
	Source          string            `json:"source"`
	SourceHash      *string           `json:"source_hash"`
	AudioSource     *string           `json:"audio_source"`
	AudioSourceHash *string           `json:"audio_source_hash"`
	SceneType       int               `json:"scene_type"`
	Pause           *bool             `json:"pause"`
	Duration        *int              `json:"duration"`
	InPoint         *int              `json:"in_point"`
	OutPoint        *int              `json:"out_point"`
	PlayVideoAudio  *bool             `json:"play_video_audio"`
	Notes           *string           `json:"notes"`
	Exif            map[string]string `json:"exif"`
	Pixmap          *string           `json:"pixmap"`
}

// record converts the scene to its wire form. With storePixmap the preview is
// embedded as a base64 PNG; otherwise the pixmap field is written as null and
// the preview is re-derived from the source on load.
func (s *Scene) record(storePixmap bool) sceneRecord {
	r := sceneRecord{
		Source:          s.Source,
		SourceHash:      &s.SourceHash,
		AudioSource:     &s.AudioSource,
		AudioSourceHash: &s.AudioSourceHash,
		SceneType:       int(s.Type),
		Pause:           &s.Pause,
		Duration:        &s.Duration,
		InPoint:         &s.InPoint,
		OutPoint:        &s.OutPoint,
		PlayVideoAudio:  &s.PlayVideoAudio,
		Notes:           &s.Notes,
		Exif:            s.Exif,
	}
	if storePixmap && s.Preview != nil {
		if encoded, err := media.PNGBase64(s.Preview); err == nil {
			r.Pixmap = &encoded
		} else {
			log.Printf("Could not encode preview for scene %s: %v", s.ID, err)
		}
	}
	return r
}

// sceneFromRecord rebuilds a scene from its wire form. Missing optional
// fields fall back to the constructor defaults; a missing pixmap is
// re-derived from the source (keyframe for video, the file itself for stills,
// a solid placeholder otherwise).
func sceneFromRecord(r sceneRecord) *Scene {
	var preview image.Image
	if r.Pixmap != nil && *r.Pixmap != "" {
		img, err := media.ImageFromPNGBase64(*r.Pixmap)
		if err != nil {
			log.Printf("Could not decode embedded preview for %s: %v", r.Source, err)
		} else {
			preview = img
		}
	}
	if preview == nil {
		preview = derivePreview(r.Source, SceneType(r.SceneType))
	}
	preview = media.Scaled(preview, media.PreviewSize)

	s := NewScene(r.Source, SceneType(r.SceneType), preview)

	if r.SourceHash != nil {
		s.SourceHash = *r.SourceHash
	}
	if r.AudioSource != nil && *r.AudioSource != "" {
		s.AudioSource = *r.AudioSource
	}
	if r.AudioSourceHash != nil {
		s.AudioSourceHash = *r.AudioSourceHash
	}
	if r.Pause != nil {
		s.Pause = *r.Pause
	}
	if r.Duration != nil {
		s.Duration = *r.Duration
	}
	if r.InPoint != nil {
		s.InPoint = *r.InPoint
	}
	if r.OutPoint != nil {
		s.OutPoint = *r.OutPoint
	}
	if r.Notes != nil {
		s.Notes = *r.Notes
	}
	if r.Exif != nil {
		s.Exif = r.Exif
	}

	if r.PlayVideoAudio != nil {
		s.PlayVideoAudio = *r.PlayVideoAudio
	} else if s.Type == SceneTypeVideo {
		// Legacy records have no play_video_audio field; play the clip's
		// own audio when the file actually carries an audio stream.
		if hasAudio, err := media.HasAudioStream(s.Source); err == nil {
			s.PlayVideoAudio = hasAudio
		}
	}

	return s
}

func derivePreview(source string, sceneType SceneType) image.Image {
	switch sceneType {
	case SceneTypeVideo:
		img, err := media.Keyframe(source)
		if err != nil {
			log.Printf("Could not extract keyframe from %s: %v", source, err)
			return media.SolidPlaceholder()
		}
		return img
	case SceneTypeStill:
		img, err := media.LoadImage(source)
		if err != nil {
			log.Printf("Could not load still image %s: %v", source, err)
			return media.SolidPlaceholder()
		}
		return img
	}
	return media.SolidPlaceholder()
}

// ToJSON serializes the scene as a standalone JSON document.
func (s *Scene) ToJSON(storePixmap bool) ([]byte, error) {
	return json.Marshal(s.record(storePixmap))
}

// SceneFromJSON deserializes a scene from a standalone JSON document.
func SceneFromJSON(data []byte) (*Scene, error) {
	var r sceneRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return sceneFromRecord(r), nil
}

// ProgressReport is emitted while long-running background work (directory
// import, project save/load) is in flight.
type ProgressReport struct {
	Percent   int    `json:"percent"`
	FileName  string `json:"fileName,omitempty"`
	Message   string `json:"message"`
	Completed bool   `json:"completed"`
	Error     string `json:"error,omitempty"`
}
