package backend

import (
	"encoding/json"
	"log"
)

// Show couples a sequence of scenes with a playback state machine. State
// transitions are driven by the runner and the service layer; the show itself
// only enforces the no-op rule for same-state writes.
type Show struct {
	sequence *Sequence
	state    ShowState

	stateChanged []func(st ShowState)
}

func NewShow() *Show {
	return &Show{sequence: NewSequence(), state: ShowStopped}
}

// Sequence returns the show's scene list.
func (w *Show) Sequence() *Sequence {
	return w.sequence
}

// State returns the current playback state.
func (w *Show) State() ShowState {
	return w.state
}

// OnStateChanged registers a listener invoked after every effective state
// transition.
func (w *Show) OnStateChanged(fn func(st ShowState)) {
	w.stateChanged = append(w.stateChanged, fn)
}

// SetState transitions the show. Writing the current state is a no-op and
// fires no event; the return reports whether a transition happened.
func (w *Show) SetState(st ShowState) bool {
	if st == w.state {
		return false
	}
	log.Printf("Show state %s -> %s", w.state, st)
	w.state = st
	for _, fn := range w.stateChanged {
		fn(st)
	}
	return true
}

// Length returns the number of scenes in the show.
func (w *Show) Length() int {
	return w.sequence.RowCount()
}

// Scene returns the scene at index.
func (w *Show) Scene(index int) (*Scene, error) {
	return w.sequence.Item(index)
}

// scenesJSON serializes every scene to its wire form, in order. The progress
// callback is invoked per scene with a 0-100 percentage.
func (w *Show) scenesJSON(storePixmaps bool, progress func(percent int, name string)) []sceneRecord {
	total := w.sequence.RowCount()
	records := make([]sceneRecord, 0, total)
	for row := 0; row < total; row++ {
		sc, err := w.sequence.Item(row)
		if err != nil {
			log.Printf("Skipping unreadable scene at row %d: %v", row, err)
			continue
		}
		records = append(records, sc.record(storePixmaps))
		if progress != nil {
			progress((row+1)*100/total, sc.DisplayName())
		}
	}
	return records
}

// loadScenes replaces the show's contents with the given records: clear the
// sequence, force the state to stopped, then append the rebuilt scenes.
func (w *Show) loadScenes(records []sceneRecord, progress func(percent int, name string)) {
	w.sequence.Clear()
	w.SetState(ShowStopped)
	for i, r := range records {
		sc := sceneFromRecord(r)
		w.sequence.Append(sc)
		if progress != nil {
			progress((i+1)*100/len(records), sc.DisplayName())
		}
	}
}

// ToJSON serializes the show's scenes as a standalone JSON array.
func (w *Show) ToJSON(storePixmaps bool) ([]byte, error) {
	return json.Marshal(w.scenesJSON(storePixmaps, nil))
}
