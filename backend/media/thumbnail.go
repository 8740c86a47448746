// Package media implements the external collaborators the show engine
// consumes: thumbnail scaling, video keyframe extraction, EXIF and GPX
// parsing, and magic-byte file classification.
package media

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"

	"golang.org/x/image/draw"
)

const (
	// IconSize is the edge length of the small icons shown in the
	// sequence table and the project bin.
	IconSize = 100
	// PreviewSize is the edge length previews are scaled to before they
	// are embedded into a project file.
	PreviewSize = 800
)

// Scaled returns img scaled down so that its longer edge is max pixels,
// keeping the aspect ratio. Images already within bounds are returned as-is.
func Scaled(img image.Image, max int) image.Image {
	if img == nil {
		return nil
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= max && h <= max {
		return img
	}
	if w >= h {
		h = h * max / w
		w = max
	} else {
		w = w * max / h
		h = max
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// PNGBase64 encodes img as a base64 PNG string for embedding in project JSON.
func PNGBase64(img image.Image) (string, error) {
	if img == nil {
		return "", fmt.Errorf("no image to encode")
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode PNG: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// ImageFromPNGBase64 decodes a base64 PNG string produced by PNGBase64.
func ImageFromPNGBase64(val string) (image.Image, error) {
	raw, err := base64.StdEncoding.DecodeString(val)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 pixmap: %w", err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode PNG pixmap: %w", err)
	}
	return img, nil
}

// SolidPlaceholder returns the solid black square used when no preview can be
// derived for a scene.
func SolidPlaceholder() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, IconSize, IconSize))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	return img
}

// LoadImage decodes a still image from disk.
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	return img, nil
}
