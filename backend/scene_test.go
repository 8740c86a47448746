package backend

import (
	"image"
	"testing"
)

func testPreview() image.Image {
	return image.NewRGBA(image.Rect(0, 0, 16, 16))
}

func TestDwellMillis(t *testing.T) {
	cases := []struct {
		name               string
		duration, in, out  int
		defaultDelay, want int
	}{
		{"in/out interval wins", 7000, 1000, 4000, 5000, 3000},
		{"default for -1", -1, -1, -1, 5000, 5000},
		{"explicit duration", 250, -1, -1, 5000, 250},
		{"explicit zero", 0, -1, -1, 5000, 0},
		{"invalid interval falls back", 7000, 4000, 1000, 5000, 7000},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			sc := NewScene("", SceneTypeVideo, nil)
			sc.Duration = c.duration
			sc.InPoint = c.in
			sc.OutPoint = c.out
			if got := sc.DwellMillis(c.defaultDelay); got != c.want {
				t.Errorf("DwellMillis = %d, want %d", got, c.want)
			}
		})
	}
}

func TestEditableColumn(t *testing.T) {
	video := NewScene("", SceneTypeVideo, nil)
	still := NewScene("", SceneTypeStill, nil)

	if !video.EditableColumn(ColInPoint) || !video.EditableColumn(ColOutPoint) {
		t.Error("in/out columns must be editable for video scenes")
	}
	if video.EditableColumn(ColSource) || video.EditableColumn(ColDuration) {
		t.Error("only in/out columns may be editable")
	}
	if still.EditableColumn(ColInPoint) || still.EditableColumn(ColOutPoint) {
		t.Error("no column may be editable for still scenes")
	}
}

func TestSceneJSONRoundTrip(t *testing.T) {
	sc := NewScene("", SceneTypeStill, testPreview())
	sc.Duration = 2500
	sc.Notes = "sunrise over the pass"
	sc.Exif = map[string]string{"EXIF:CreateDate": "2024:06:01 08:15:00", "File:FileName": "sunrise.jpg"}

	data, err := sc.ToJSON(true)
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}

	loaded, err := SceneFromJSON(data)
	if err != nil {
		t.Fatalf("SceneFromJSON failed: %v", err)
	}

	if loaded.Type != SceneTypeStill {
		t.Errorf("Type = %d, want %d", loaded.Type, SceneTypeStill)
	}
	if loaded.Duration != 2500 {
		t.Errorf("Duration = %d, want 2500", loaded.Duration)
	}
	if loaded.Notes != sc.Notes {
		t.Errorf("Notes = %q, want %q", loaded.Notes, sc.Notes)
	}
	if loaded.CaptureTime() != "2024:06:01 08:15:00" {
		t.Errorf("CaptureTime = %q", loaded.CaptureTime())
	}
	if loaded.DisplayName() != "sunrise.jpg" {
		t.Errorf("DisplayName = %q, want sunrise.jpg", loaded.DisplayName())
	}
	if loaded.Preview == nil {
		t.Error("embedded preview was not restored")
	}
	if loaded.Icon == nil {
		t.Error("icon was not derived from preview")
	}
}

func TestSceneJSONWithoutPixmap(t *testing.T) {
	sc := NewScene("", SceneTypeStill, testPreview())

	data, err := sc.ToJSON(false)
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}

	loaded, err := SceneFromJSON(data)
	if err != nil {
		t.Fatalf("SceneFromJSON failed: %v", err)
	}
	// The source file is gone, so the preview falls back to a placeholder.
	if loaded.Preview == nil {
		t.Error("expected a placeholder preview")
	}
}

func TestSceneIDsAreUnique(t *testing.T) {
	a := NewScene("", SceneTypeStill, nil)
	b := NewScene("", SceneTypeStill, nil)
	if a.ID == b.ID {
		t.Error("two scenes share one UUID")
	}
}
