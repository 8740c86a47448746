package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShowSetState(t *testing.T) {
	w := NewShow()

	var transitions []ShowState
	w.OnStateChanged(func(st ShowState) {
		transitions = append(transitions, st)
	})

	assert.False(t, w.SetState(ShowStopped), "writing the current state is a no-op")
	assert.True(t, w.SetState(ShowRunning))
	assert.True(t, w.SetState(ShowFinished))
	assert.False(t, w.SetState(ShowFinished))

	assert.Equal(t, []ShowState{ShowRunning, ShowFinished}, transitions)
	assert.Equal(t, ShowFinished, w.State())
}

func TestShowStateNames(t *testing.T) {
	assert.Equal(t, "stopped", ShowStopped.String())
	assert.Equal(t, "running", ShowRunning.String())
	assert.Equal(t, "paused", ShowPaused.String())
	assert.Equal(t, "finished", ShowFinished.String())
}

func TestShowLoadScenes(t *testing.T) {
	w := NewShow()
	w.Sequence().Append(NewScene("/old.jpg", SceneTypeStill, nil))
	w.SetState(ShowRunning)

	records := []sceneRecord{
		NewScene("/a.jpg", SceneTypeStill, testPreview()).record(true),
		NewScene("/b.jpg", SceneTypeStill, testPreview()).record(true),
	}
	w.loadScenes(records, nil)

	assert.Equal(t, 2, w.Length())
	assert.Equal(t, ShowStopped, w.State())

	sc, err := w.Scene(0)
	assert.NoError(t, err)
	assert.Equal(t, "/a.jpg", sc.Source)
}
