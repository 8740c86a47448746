package backend

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// View is the playback surface the runner drives. Implementations forward
// these calls to the frontend; all of them must be safe to call from timer
// goroutines.
type View interface {
	LoadScene(sc *Scene)
	UpdatePresenter(current, prev, next *Scene, counter string)
	SetOpacity(opacity float64)
	SetProgress(percent int)
	SetVideoPlaying(playing bool)
}

// AudioPlayer is the background-audio sink the runner controls.
type AudioPlayer interface {
	Source() string
	SetSource(path string)
	Play()
	Pause()
	Stop()
	Volume() float64
	SetVolume(volume float64)
	SetMuted(muted bool)
}

// Navigation actions accepted by ChangeScene.
const (
	ActionFirst = "first"
	ActionPrev  = "previous"
	ActionNext  = "next"
	ActionSeek  = "seek"
)

// Audio control actions accepted by ControlAudio.
const (
	AudioMute    = "mute"
	AudioQuiet   = "quiet"
	AudioFadeIn  = "fade_in"
	AudioFadeOut = "fade_out"
	AudioStop    = "stop"
)

const (
	animTick        = 16 * time.Millisecond
	volumeFadeMsec  = 500
	quietAttenuator = 8.0
)

// anim interpolates a float value over a wall-clock duration on its own
// goroutine. Restarting or stopping invalidates the previous run through a
// generation counter, so a stale tick can never apply after a Stop. The done
// callback always arrives asynchronously, even for zero durations, so callers
// can chain animations without re-entering their own locks.
type anim struct {
	mu  sync.Mutex
	gen int
}

func (a *anim) Start(d time.Duration, from, to float64, apply func(v float64), done func()) {
	a.mu.Lock()
	a.gen++
	gen := a.gen
	a.mu.Unlock()

	go func() {
		if d <= 0 {
			if a.live(gen) {
				apply(to)
				if done != nil {
					done()
				}
			}
			return
		}

		start := time.Now()
		ticker := time.NewTicker(animTick)
		defer ticker.Stop()
		for range ticker.C {
			if !a.live(gen) {
				return
			}
			elapsed := time.Since(start)
			if elapsed >= d {
				apply(to)
				if done != nil {
					done()
				}
				return
			}
			frac := float64(elapsed) / float64(d)
			apply(from + (to-from)*frac)
		}
	}()
}

func (a *anim) live(gen int) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return gen == a.gen
}

// Stop invalidates any running interpolation. The value stays wherever the
// last applied tick left it.
func (a *anim) Stop() {
	a.mu.Lock()
	a.gen++
	a.mu.Unlock()
}

// singleShot is a re-armable one-shot timer. Arming replaces any pending
// fire; Cancel is idempotent. Liveness is checked at fire time, so a timer
// that raced with Cancel never delivers.
type singleShot struct {
	mu    sync.Mutex
	gen   int
	timer *time.Timer
}

func (t *singleShot) Arm(d time.Duration, fire func()) {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
	}
	t.gen++
	gen := t.gen
	t.timer = time.AfterFunc(d, func() {
		t.mu.Lock()
		live := gen == t.gen
		t.mu.Unlock()
		if live {
			fire()
		}
	})
	t.mu.Unlock()
}

func (t *singleShot) Cancel() {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.gen++
	t.mu.Unlock()
}

// SceneRunner drives playback of a show: it walks the sequence, holds each
// scene on screen for its dwell time, cross-fades between scenes, and keeps
// the background audio in step.
//
// Timer and animation callbacks fire on their own goroutines, so the runner
// serializes every entry point behind one mutex.
type SceneRunner struct {
	mu       sync.Mutex
	show     *Show
	settings *Settings
	view     View
	audio    AudioPlayer

	current    int
	baseVolume float64
	quiet      bool
	muted      bool

	dwell        singleShot
	progressAnim anim
	fadeInAnim   anim
	fadeOutAnim  anim
	volumeAnim   anim

	sceneChanged []func(index int)
}

func NewSceneRunner(show *Show, settings *Settings, view View, audio AudioPlayer) *SceneRunner {
	r := &SceneRunner{
		show:       show,
		settings:   settings,
		view:       view,
		audio:      audio,
		current:    -1,
		baseVolume: 1,
	}
	show.OnStateChanged(r.stateChanged)
	return r
}

// OnSceneChanged registers a listener invoked after the current scene index
// moves.
func (r *SceneRunner) OnSceneChanged(fn func(index int)) {
	r.sceneChanged = append(r.sceneChanged, fn)
}

// Current returns the index of the scene currently on screen, -1 before the
// first scene is loaded.
func (r *SceneRunner) Current() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

func (r *SceneRunner) transitionTime() time.Duration {
	return time.Duration(r.settings.GetInt("transition_time", 1000)) * time.Millisecond
}

// ChangeScene moves the current index per the action ("first", "previous",
// "next", "seek" with an explicit index), clamped to the sequence bounds,
// then loads the target scene when the show is in a playback state. Moving
// forward onto the last scene while running finishes the show.
func (r *SceneRunner) ChangeScene(action string, index int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changeSceneLocked(action, index)
}

func (r *SceneRunner) changeSceneLocked(action string, index int) {
	length := r.show.Length()
	if length == 0 {
		return
	}

	target := r.current
	switch action {
	case ActionFirst:
		target = 0
	case ActionPrev:
		target = r.current - 1
	case ActionNext:
		target = r.current + 1
	case ActionSeek:
		if index < 0 || index >= length {
			log.Printf("Rejecting seek to out-of-range scene %d", index)
			return
		}
		target = index
	default:
		log.Printf("Unknown scene change action %q", action)
		return
	}
	if target < 0 {
		target = 0
	}
	if target >= length {
		target = length - 1
	}
	// Clamped-away navigation is a no-op; only "first" may re-enter the
	// current scene, so a restart reloads scene 0.
	if target == r.current && action != ActionFirst {
		return
	}

	r.current = target
	r.updatePresenterLocked()

	switch r.show.State() {
	case ShowRunning, ShowPaused, ShowFinished:
		r.loadSceneLocked(target)
	}

	// Landing on the last scene while running finishes the show no matter
	// how the navigation was triggered; a single-scene show finishes on
	// its opening rewind.
	if target == length-1 && r.show.State() == ShowRunning {
		r.show.SetState(ShowFinished)
	}

	for _, fn := range r.sceneChanged {
		fn(target)
	}

	if r.show.State() == ShowRunning {
		r.runSceneLocked(target)
	}
}

func (r *SceneRunner) updatePresenterLocked() {
	current, err := r.show.Scene(r.current)
	if err != nil {
		return
	}
	var prev, next *Scene
	if r.current > 0 {
		prev, _ = r.show.Scene(r.current - 1)
	}
	if r.current < r.show.Length()-1 {
		next, _ = r.show.Scene(r.current + 1)
	}
	counter := fmt.Sprintf("%d/%d", r.current+1, r.show.Length())
	r.view.UpdatePresenter(current, prev, next, counter)
}

// loadSceneLocked puts the scene on screen and fades it in over the full
// transition time. Background audio is swapped only when the source actually
// differs, so a run of scenes sharing one track plays it uninterrupted.
func (r *SceneRunner) loadSceneLocked(index int) {
	sc, err := r.show.Scene(index)
	if err != nil {
		return
	}

	r.view.LoadScene(sc)
	r.fadeInAnim.Start(r.transitionTime(), 0, 1, r.view.SetOpacity, nil)

	if sc.AudioSource != "" {
		if r.audio.Source() != sc.AudioSource {
			log.Printf("Switching background audio to %s", sc.AudioSource)
			r.audio.SetSource(sc.AudioSource)
			r.audio.Play()
		}
	} else {
		r.controlAudioLocked(AudioStop)
	}

	if sc.Type == SceneTypeVideo && sc.PlayVideoAudio && !r.quiet {
		r.controlAudioLocked(AudioQuiet)
	}
}

// runSceneLocked starts the dwell clock for the scene at index. Outside the
// running state it tears the clock down instead.
func (r *SceneRunner) runSceneLocked(index int) {
	if r.show.State() != ShowRunning {
		r.progressAnim.Stop()
		r.dwell.Cancel()
		return
	}

	sc, err := r.show.Scene(index)
	if err != nil {
		return
	}

	dwell := time.Duration(sc.DwellMillis(r.settings.GetInt("default_delay", 5000))) * time.Millisecond
	log.Printf("Running scene %d for %s", index, TimeStringFromMsec(int(dwell/time.Millisecond)))

	r.progressAnim.Start(dwell, 0, 100, func(v float64) {
		r.view.SetProgress(int(v))
	}, nil)
	r.dwell.Arm(dwell, r.dwellExpired)
}

// dwellExpired fades the scene out over a quarter of the transition time and
// then advances; the remaining transition budget is spent fading the next
// scene in.
func (r *SceneRunner) dwellExpired() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.show.State() != ShowRunning {
		return
	}
	r.fadeOutAnim.Start(r.transitionTime()/4, 1, 0, r.view.SetOpacity, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		// The show may have been paused or stopped during the fade.
		if r.show.State() != ShowRunning {
			return
		}
		r.changeSceneLocked(ActionNext, 0)
	})
}

// stateChanged reacts to show state transitions: leaving the running state
// freezes the dwell clock, entering it restarts the current scene's clock
// from zero. A scene paused mid-dwell therefore dwells its full time again
// on resume.
func (r *SceneRunner) stateChanged(st ShowState) {
	if st != ShowRunning {
		r.progressAnim.Stop()
		r.dwell.Cancel()
	}
	r.view.SetVideoPlaying(st == ShowRunning)
	if st == ShowRunning {
		r.runSceneLocked(r.current)
	}
}

// StartShow begins or resumes playback. From stopped or finished it rewinds
// to the first scene; from paused it resumes in place.
func (r *SceneRunner) StartShow() {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch r.show.State() {
	case ShowStopped, ShowFinished:
		// Enter the running state first so the rewind loads the scene.
		r.show.SetState(ShowRunning)
		r.changeSceneLocked(ActionFirst, 0)
	case ShowPaused:
		r.show.SetState(ShowRunning)
	}
}

// PauseShow pauses a running show and zeroes the progress display.
func (r *SceneRunner) PauseShow() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.show.State() != ShowRunning {
		return
	}
	r.show.SetState(ShowPaused)
	r.view.SetProgress(0)
}

// StopShow halts playback and rewinds to the first scene.
func (r *SceneRunner) StopShow() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.show.SetState(ShowStopped)
	r.changeSceneLocked(ActionFirst, 0)
	r.controlAudioLocked(AudioStop)
	r.view.SetProgress(0)
}

// Next advances one scene manually. Playback pauses first, then the current
// scene fades out and the next fades in; at the end of the sequence the call
// only pauses.
func (r *SceneRunner) Next() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.show.State() == ShowRunning {
		r.show.SetState(ShowPaused)
		r.view.SetProgress(0)
	}
	if r.current >= r.show.Length()-1 {
		return
	}
	r.fadeOutAnim.Start(r.transitionTime()/4, 1, 0, r.view.SetOpacity, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.changeSceneLocked(ActionNext, 0)
	})
}

// Prev steps one scene back manually, pausing playback first.
func (r *SceneRunner) Prev() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.show.State() == ShowRunning {
		r.show.SetState(ShowPaused)
		r.view.SetProgress(0)
	}
	r.changeSceneLocked(ActionPrev, 0)
}

// Seek jumps to an explicit scene index, pausing playback first.
func (r *SceneRunner) Seek(index int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.show.State() == ShowRunning {
		r.show.SetState(ShowPaused)
		r.view.SetProgress(0)
	}
	r.changeSceneLocked(ActionSeek, index)
}

// SetVolume sets the reference volume that fades and ducking are computed
// from, and applies it immediately unless a quiet duck is active.
func (r *SceneRunner) SetVolume(volume float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.baseVolume = volume
	if !r.quiet {
		r.audio.SetVolume(volume)
	}
}

// ControlAudio executes one audio action: mute toggles the player's mute
// flag, quiet toggles a duck to an eighth of the reference volume, fade_in
// and fade_out ramp between silence and the reference volume, stop halts the
// player. Quiet ducking uses the same volume ramp whether it is triggered
// manually or by a video scene that plays its own audio.
func (r *SceneRunner) ControlAudio(action string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.controlAudioLocked(action)
}

func (r *SceneRunner) controlAudioLocked(action string) {
	fade := volumeFadeMsec * time.Millisecond
	switch action {
	case AudioMute:
		r.muted = !r.muted
		r.audio.SetMuted(r.muted)
	case AudioQuiet:
		r.quiet = !r.quiet
		target := r.baseVolume
		if r.quiet {
			target = r.baseVolume / quietAttenuator
		}
		r.volumeAnim.Start(fade, r.audio.Volume(), target, r.audio.SetVolume, nil)
	case AudioFadeIn:
		r.volumeAnim.Start(fade, r.audio.Volume(), r.baseVolume, r.audio.SetVolume, nil)
	case AudioFadeOut:
		r.volumeAnim.Start(fade, r.audio.Volume(), 0, r.audio.SetVolume, nil)
	case AudioStop:
		r.volumeAnim.Stop()
		r.audio.Stop()
	default:
		log.Printf("Unknown audio control action %q", action)
	}
}
