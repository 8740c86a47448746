package backend

import (
	"log"
	"sync"

	"github.com/wailsapp/wails/v3/pkg/application"

	"multivision/backend/media"
)

// eventView forwards runner view calls to the frontend as Wails events. All
// methods tolerate a nil app so the engine runs headless in tests.
type eventView struct {
	app *application.App
}

func (v *eventView) emit(name string, payload any) {
	if v.app != nil {
		v.app.Event.Emit(name, payload)
	}
}

func (v *eventView) LoadScene(sc *Scene) {
	payload := map[string]any{
		"source":         sc.Source,
		"sceneType":      int(sc.Type),
		"inPoint":        sc.InPoint,
		"outPoint":       sc.OutPoint,
		"playVideoAudio": sc.PlayVideoAudio,
	}
	if sc.Type == SceneTypeMap {
		points, err := media.TrackFromGPX(sc.Source)
		if err != nil {
			log.Printf("Could not load track for %s: %v", sc.Source, err)
		} else {
			lat, lon := media.TrackCenter(points)
			payload["track"] = points
			payload["centerLat"] = lat
			payload["centerLon"] = lon
		}
	}
	v.emit("view:loadScene", payload)
}

func (v *eventView) UpdatePresenter(current, prev, next *Scene, counter string) {
	payload := map[string]any{"counter": counter}
	if current != nil {
		payload["current"] = presenterEntry(current)
	}
	if prev != nil {
		payload["previous"] = presenterEntry(prev)
	}
	if next != nil {
		payload["next"] = presenterEntry(next)
	}
	v.emit("view:presenter", payload)
}

func presenterEntry(sc *Scene) map[string]any {
	entry := map[string]any{
		"name":  sc.DisplayName(),
		"notes": sc.Notes,
	}
	if sc.Icon != nil {
		if encoded, err := media.PNGBase64(sc.Icon); err == nil {
			entry["icon"] = encoded
		}
	}
	return entry
}

func (v *eventView) SetOpacity(opacity float64) {
	v.emit("view:opacity", opacity)
}

func (v *eventView) SetProgress(percent int) {
	v.emit("view:progress", percent)
}

func (v *eventView) SetVideoPlaying(playing bool) {
	v.emit("view:videoPlaying", playing)
}

// eventAudio forwards runner audio calls to the frontend player as Wails
// events and mirrors the player state the runner reads back (source, volume,
// mute). Timer goroutines and frontend calls race on it, hence the mutex.
type eventAudio struct {
	app *application.App

	mu     sync.Mutex
	source string
	volume float64
	muted  bool
}

func (a *eventAudio) emit(name string, payload any) {
	if a.app != nil {
		a.app.Event.Emit(name, payload)
	}
}

func (a *eventAudio) Source() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.source
}

func (a *eventAudio) SetSource(path string) {
	a.mu.Lock()
	a.source = path
	a.mu.Unlock()
	a.emit("audio:source", path)
}

func (a *eventAudio) Play()  { a.emit("audio:play", nil) }
func (a *eventAudio) Pause() { a.emit("audio:pause", nil) }

func (a *eventAudio) Stop() {
	a.mu.Lock()
	a.source = ""
	a.mu.Unlock()
	a.emit("audio:stop", nil)
}

func (a *eventAudio) Volume() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.volume
}

func (a *eventAudio) SetVolume(volume float64) {
	a.mu.Lock()
	a.volume = volume
	a.mu.Unlock()
	a.emit("audio:volume", volume)
}

func (a *eventAudio) SetMuted(muted bool) {
	a.mu.Lock()
	a.muted = muted
	a.mu.Unlock()
	a.emit("audio:muted", muted)
}
