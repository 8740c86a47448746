package media

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os/exec"
)

// ErrNoVideoStream is returned by Keyframe for files without a video stream.
var ErrNoVideoStream = errors.New("no video stream")

// probeResult is the subset of ffprobe's JSON output we care about.
type probeResult struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
	} `json:"streams"`
}

// ProbeStreams inspects a media file with ffprobe and reports whether it
// carries video and audio streams.
func ProbeStreams(path string) (hasVideo, hasAudio bool, err error) {
	cmd := exec.Command("ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		path,
	)

	output, err := cmd.Output()
	if err != nil {
		return false, false, fmt.Errorf("ffprobe failed: %v", err)
	}

	var result probeResult
	if err := json.Unmarshal(output, &result); err != nil {
		return false, false, err
	}

	for _, stream := range result.Streams {
		switch stream.CodecType {
		case "video":
			hasVideo = true
		case "audio":
			hasAudio = true
		}
	}
	return hasVideo, hasAudio, nil
}

// HasAudioStream reports whether the file at path contains an audio stream.
func HasAudioStream(path string) (bool, error) {
	_, hasAudio, err := ProbeStreams(path)
	return hasAudio, err
}

// Keyframe decodes the first keyframe of the video at path into an image.
// Files without a video stream yield ErrNoVideoStream.
func Keyframe(path string) (image.Image, error) {
	hasVideo, _, err := ProbeStreams(path)
	if err != nil {
		return nil, err
	}
	if !hasVideo {
		return nil, fmt.Errorf("%s: %w", path, ErrNoVideoStream)
	}

	// Ask ffmpeg for the first I-frame only and stream it out as PNG.
	cmd := exec.Command("ffmpeg",
		"-skip_frame", "nokey",
		"-i", path,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-c:v", "png",
		"-",
	)

	var out bytes.Buffer
	var errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg keyframe extraction failed: %v\n%s", err, errBuf.String())
	}

	img, err := png.Decode(&out)
	if err != nil {
		return nil, fmt.Errorf("failed to decode keyframe: %w", err)
	}
	return img, nil
}
