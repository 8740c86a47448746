package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSequence(t *testing.T, n int) *Sequence {
	t.Helper()
	seq := NewSequence()
	for i := 0; i < n; i++ {
		seq.Append(NewScene("", SceneTypeStill, nil))
	}
	return seq
}

func TestSequenceAppendAndItem(t *testing.T) {
	seq := NewSequence()

	var inserted [][2]int
	seq.OnRowsInserted(func(first, last int) {
		inserted = append(inserted, [2]int{first, last})
	})

	a := NewScene("/a.jpg", SceneTypeStill, nil)
	b := NewScene("/b.jpg", SceneTypeStill, nil)
	seq.Append(a)
	seq.Append(b)

	assert.Equal(t, 2, seq.RowCount())
	assert.Equal(t, 2, seq.SceneCount())
	assert.Equal(t, [][2]int{{0, 0}, {1, 1}}, inserted)

	got, err := seq.Item(1)
	require.NoError(t, err)
	assert.Same(t, b, got)
}

func TestSequenceItemOutOfRange(t *testing.T) {
	seq := newTestSequence(t, 1)

	_, err := seq.Item(-1)
	assert.ErrorIs(t, err, ErrRowOutOfRange)
	_, err = seq.Item(1)
	assert.ErrorIs(t, err, ErrRowOutOfRange)
}

func TestSequenceSetField(t *testing.T) {
	seq := NewSequence()
	sc := NewScene("/clip.mp4", SceneTypeVideo, nil)
	sc.Duration = 10000
	sc.InPoint = 0
	sc.OutPoint = 10000
	seq.Append(sc)

	var changes [][2]int
	seq.OnDataChanged(func(row, col int) {
		changes = append(changes, [2]int{row, col})
	})

	assert.True(t, seq.SetField(0, ColInPoint, 2000))
	assert.Equal(t, 2000, sc.InPoint)

	assert.True(t, seq.SetField(0, ColOutPoint, 8000))
	assert.Equal(t, 8000, sc.OutPoint)

	// Out of bounds, crossing the other point, or uneditable: rejected,
	// no event.
	assert.False(t, seq.SetField(0, ColInPoint, -1))
	assert.False(t, seq.SetField(0, ColInPoint, 10001))
	assert.False(t, seq.SetField(0, ColInPoint, 8000))
	assert.False(t, seq.SetField(0, ColOutPoint, 2000))
	assert.False(t, seq.SetField(0, ColDuration, 1))

	assert.Equal(t, [][2]int{{0, ColInPoint}, {0, ColOutPoint}}, changes)
	assert.Equal(t, 2000, sc.InPoint)
	assert.Equal(t, 8000, sc.OutPoint)
}

func TestSequenceSetFieldRejectsStill(t *testing.T) {
	seq := NewSequence()
	sc := NewScene("/a.jpg", SceneTypeStill, nil)
	sc.Duration = 10000
	seq.Append(sc)

	assert.False(t, seq.SetField(0, ColInPoint, 1000))
}

func TestSequenceRemove(t *testing.T) {
	seq := newTestSequence(t, 3)

	var removed [][2]int
	seq.OnRowsRemoved(func(first, last int) {
		removed = append(removed, [2]int{first, last})
	})

	assert.True(t, seq.Remove(1))
	assert.Equal(t, 2, seq.RowCount())
	assert.Equal(t, 2, seq.SceneCount())
	assert.Equal(t, [][2]int{{1, 1}}, removed)

	assert.False(t, seq.Remove(5))
}

func TestSequenceClear(t *testing.T) {
	seq := newTestSequence(t, 3)

	resets := 0
	removals := 0
	seq.OnReset(func() { resets++ })
	seq.OnRowsRemoved(func(first, last int) { removals++ })

	seq.Clear()

	assert.Equal(t, 0, seq.RowCount())
	assert.Equal(t, 0, seq.SceneCount())
	assert.Equal(t, 1, resets)
	assert.Equal(t, 0, removals)
}

func TestSequenceMove(t *testing.T) {
	seq := NewSequence()
	a := NewScene("/a.jpg", SceneTypeStill, nil)
	b := NewScene("/b.jpg", SceneTypeStill, nil)
	c := NewScene("/c.jpg", SceneTypeStill, nil)
	seq.Append(a)
	seq.Append(b)
	seq.Append(c)

	require.True(t, seq.Move(0, 2))

	first, _ := seq.Item(0)
	last, _ := seq.Item(2)
	assert.Same(t, b, first)
	assert.Same(t, a, last)

	assert.False(t, seq.Move(1, 1))
	assert.False(t, seq.Move(-1, 0))
	assert.False(t, seq.Move(0, 3))
}

func TestSequenceInsertAt(t *testing.T) {
	seq := newTestSequence(t, 2)
	sc := NewScene("/new.jpg", SceneTypeStill, nil)

	seq.InsertAt(1, sc)

	got, err := seq.Item(1)
	require.NoError(t, err)
	assert.Same(t, sc, got)
	assert.Equal(t, 3, seq.RowCount())
}

func TestSequenceSortBySource(t *testing.T) {
	seq := NewSequence()
	seq.Append(NewScene("/c.jpg", SceneTypeStill, nil))
	seq.Append(NewScene("/a.jpg", SceneTypeStill, nil))
	seq.Append(NewScene("/b.jpg", SceneTypeStill, nil))

	resets := 0
	seq.OnReset(func() { resets++ })

	seq.Sort(ColSource, true)

	var sources []string
	for row := 0; row < seq.RowCount(); row++ {
		sc, err := seq.Item(row)
		require.NoError(t, err)
		sources = append(sources, sc.Source)
	}
	assert.Equal(t, []string{"/a.jpg", "/b.jpg", "/c.jpg"}, sources)
	assert.Equal(t, 1, resets)

	seq.Sort(ColSource, false)
	first, _ := seq.Item(0)
	assert.Equal(t, "/c.jpg", first.Source)
}

func TestSequenceSortByCaptureTime(t *testing.T) {
	seq := NewSequence()
	late := NewScene("/late.jpg", SceneTypeStill, nil)
	late.Exif = map[string]string{"EXIF:CreateDate": "2024:06:02 10:00:00"}
	early := NewScene("/early.jpg", SceneTypeStill, nil)
	early.Exif = map[string]string{"EXIF:CreateDate": "2024:06:01 10:00:00"}
	seq.Append(late)
	seq.Append(early)

	seq.Sort(ColCaptureTime, true)

	first, _ := seq.Item(0)
	assert.Same(t, early, first)
}

func TestSequenceInheritAudio(t *testing.T) {
	seq := newTestSequence(t, 4)

	first, _ := seq.Item(1)
	first.AudioSource = "/music.mp3"
	first.AudioSourceHash = "deadbeef"

	seq.InheritAudio([]int{3, 1, 2})

	for _, row := range []int{1, 2, 3} {
		sc, _ := seq.Item(row)
		assert.Equal(t, "/music.mp3", sc.AudioSource, "row %d", row)
		assert.Equal(t, "deadbeef", sc.AudioSourceHash, "row %d", row)
	}

	untouched, _ := seq.Item(0)
	assert.Empty(t, untouched.AudioSource)
}

func TestSequenceInheritAudioNoSource(t *testing.T) {
	seq := newTestSequence(t, 2)
	seq.InheritAudio([]int{0, 1})

	sc, _ := seq.Item(1)
	assert.Empty(t, sc.AudioSource)
}

func TestSequenceDropAsset(t *testing.T) {
	seq := newTestSequence(t, 1)

	assert.True(t, seq.DropAsset(0, "STILLS"))
	assert.True(t, seq.DropAsset(0, "VIDEO"))
	assert.False(t, seq.DropAsset(0, "AUDIO"))
	assert.False(t, seq.DropAsset(0, "TRACKS"))
}
