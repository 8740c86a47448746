package backend

import (
	"errors"
	"log"
	"sort"

	"github.com/google/uuid"
)

// Logical columns of the sequence table.
const (
	ColSource      = 0
	ColAudioSource = 1
	ColCaptureTime = 2
	ColDuration    = 3
	ColInPoint     = 4
	ColOutPoint    = 5

	ColumnCount = 6
)

var (
	// ErrRowOutOfRange is returned for row indexes outside the sequence.
	ErrRowOutOfRange = errors.New("sequence row out of range")
	// ErrSceneMissing is returned when a row's UUID has no scene in the
	// lookup table, a sign of internal desynchronization.
	ErrSceneMissing = errors.New("scene missing from lookup table")
)

// Sequence is the ordered list of scenes that make up a show. The order is a
// list of UUIDs backed by a side-table of scenes keyed by UUID; the two are
// only ever mutated together, through the whole-operation mutators below.
//
// Every mutation notifies registered listeners so observers can resynchronize
// incrementally; Clear is the one exception and emits a single reset.
//
// The sequence itself is not synchronized: all mutations arrive on the single
// control flow owned by the service layer.
type Sequence struct {
	order  []uuid.UUID
	scenes map[uuid.UUID]*Scene

	rowsInserted []func(first, last int)
	rowsRemoved  []func(first, last int)
	dataChanged  []func(row, col int)
	resets       []func()
}

func NewSequence() *Sequence {
	return &Sequence{scenes: make(map[uuid.UUID]*Scene)}
}

// OnRowsInserted registers a listener for row insertions.
func (q *Sequence) OnRowsInserted(fn func(first, last int)) {
	q.rowsInserted = append(q.rowsInserted, fn)
}

// OnRowsRemoved registers a listener for row removals.
func (q *Sequence) OnRowsRemoved(fn func(first, last int)) {
	q.rowsRemoved = append(q.rowsRemoved, fn)
}

// OnDataChanged registers a listener for in-place cell changes.
func (q *Sequence) OnDataChanged(fn func(row, col int)) {
	q.dataChanged = append(q.dataChanged, fn)
}

// OnReset registers a listener for full resets (clear, sort).
func (q *Sequence) OnReset(fn func()) {
	q.resets = append(q.resets, fn)
}

func (q *Sequence) notifyInserted(first, last int) {
	for _, fn := range q.rowsInserted {
		fn(first, last)
	}
}

func (q *Sequence) notifyRemoved(first, last int) {
	for _, fn := range q.rowsRemoved {
		fn(first, last)
	}
}

func (q *Sequence) notifyDataChanged(row, col int) {
	for _, fn := range q.dataChanged {
		fn(row, col)
	}
}

func (q *Sequence) notifyReset() {
	for _, fn := range q.resets {
		fn()
	}
}

// RowCount returns the number of rows in the sequence.
func (q *Sequence) RowCount() int {
	return len(q.order)
}

// SceneCount returns the number of scenes in the lookup table. It always
// equals RowCount unless the structures have desynchronized.
func (q *Sequence) SceneCount() int {
	return len(q.scenes)
}

// Append adds a scene to the end of the sequence, keyed by its UUID.
func (q *Sequence) Append(sc *Scene) {
	row := len(q.order)
	q.scenes[sc.ID] = sc
	q.order = append(q.order, sc.ID)
	q.notifyInserted(row, row)
}

// InsertAt inserts a scene before the given row; rows past the end append.
func (q *Sequence) InsertAt(row int, sc *Scene) {
	if row < 0 {
		row = 0
	}
	if row > len(q.order) {
		row = len(q.order)
	}
	q.scenes[sc.ID] = sc
	q.order = append(q.order, uuid.Nil)
	copy(q.order[row+1:], q.order[row:])
	q.order[row] = sc.ID
	q.notifyInserted(row, row)
}

// Item resolves a row to its scene. Out-of-range rows, rows without a UUID,
// and UUIDs missing from the lookup table are defensive failures: they are
// logged and reported as errors, never papered over with wrong data.
func (q *Sequence) Item(row int) (*Scene, error) {
	if row < 0 || row >= len(q.order) {
		log.Printf("Sequence item index is out of bounds (item %d requested, sequence has %d items)",
			row, len(q.order))
		return nil, ErrRowOutOfRange
	}
	id := q.order[row]
	if id == uuid.Nil {
		log.Printf("Item %d in sequence does not have a valid UUID", row)
		return nil, ErrSceneMissing
	}
	sc, ok := q.scenes[id]
	if !ok || sc == nil {
		log.Printf("Scene for item in sequence with UUID %s not found", id)
		return nil, ErrSceneMissing
	}
	return sc, nil
}

// SetField edits a cell. Only the in/out point columns are editable, only for
// video scenes, and only when the new value keeps 0 <= in < out <= duration.
// Rejected edits leave the scene untouched and fire no event.
func (q *Sequence) SetField(row, col, value int) bool {
	sc, err := q.Item(row)
	if err != nil {
		return false
	}
	if !sc.EditableColumn(col) {
		return false
	}
	if value < 0 || value > sc.Duration {
		return false
	}

	switch col {
	case ColInPoint:
		if value >= sc.OutPoint {
			return false
		}
		sc.InPoint = value
	case ColOutPoint:
		if value <= sc.InPoint {
			return false
		}
		sc.OutPoint = value
	}

	q.notifyDataChanged(row, col)
	return true
}

// Remove deletes the scene at row from both the order and the lookup table
// as one operation.
func (q *Sequence) Remove(row int) bool {
	if row < 0 || row >= len(q.order) {
		return false
	}
	id := q.order[row]
	q.order = append(q.order[:row], q.order[row+1:]...)
	delete(q.scenes, id)
	q.notifyRemoved(row, row)
	return true
}

// Clear empties the sequence in one atomic reset. Observers get a single
// reset notification, never per-row removals.
func (q *Sequence) Clear() {
	q.order = nil
	q.scenes = make(map[uuid.UUID]*Scene)
	q.notifyReset()
}

// Move reorders a scene from one row to another, the drag-and-drop move
// semantic: remove, then reinsert at the target.
func (q *Sequence) Move(from, to int) bool {
	if from < 0 || from >= len(q.order) || to < 0 || to >= len(q.order) || from == to {
		return false
	}
	id := q.order[from]
	q.order = append(q.order[:from], q.order[from+1:]...)
	q.notifyRemoved(from, from)
	q.order = append(q.order, uuid.Nil)
	copy(q.order[to+1:], q.order[to:])
	q.order[to] = id
	q.notifyInserted(to, to)
	return true
}

// DropAudio binds an audio source path to the scene at row without changing
// the sequence order, the drop-onto-the-audio-column semantic.
func (q *Sequence) DropAudio(row int, path string) bool {
	sc, err := q.Item(row)
	if err != nil {
		return false
	}
	sc.SetAudioSource(path)
	q.notifyDataChanged(row, ColAudioSource)
	return true
}

// DropAsset accepts a still/video catalog item dropped onto the sequence.
// The drop is accepted as an insertion point but no scene is materialized
// here: scene creation stays with the asset-import path. See DESIGN.md.
func (q *Sequence) DropAsset(row int, category string) bool {
	switch category {
	case "STILLS", "VIDEO":
		log.Printf("Accepted %s drop at row %d; scene creation is deferred to import", category, row)
		return true
	}
	return false
}

// sortKey returns the string key a column sorts by. Column 0 sorts by source
// path, column 2 by capture-time metadata; all other columns have no key and
// use a fixed sentinel, which groups un-keyed rows at one end.
func (q *Sequence) sortKey(id uuid.UUID, column int) string {
	sc := q.scenes[id]
	if sc == nil {
		return "0"
	}
	switch column {
	case ColSource:
		return sc.Source
	case ColCaptureTime:
		if key := sc.CaptureTime(); key != "" {
			return key
		}
	}
	return "0"
}

// Sort stably reorders the sequence by the given column and emits one reset.
func (q *Sequence) Sort(column int, ascending bool) {
	sort.SliceStable(q.order, func(i, j int) bool {
		a := q.sortKey(q.order[i], column)
		b := q.sortKey(q.order[j], column)
		if ascending {
			return a < b
		}
		return a > b
	})
	q.notifyReset()
}

// InheritAudio propagates the audio source of the first selected row (by row
// order) to every row in the selection. A selection whose first row has no
// audio source is a no-op.
func (q *Sequence) InheritAudio(rows []int) {
	if len(rows) == 0 {
		return
	}
	sorted := append([]int(nil), rows...)
	sort.Ints(sorted)

	first, err := q.Item(sorted[0])
	if err != nil || first.AudioSource == "" {
		return
	}

	for _, row := range sorted {
		sc, err := q.Item(row)
		if err != nil {
			continue
		}
		log.Printf("Setting audio source %s on scene row %d", first.AudioSource, row)
		sc.AudioSource = first.AudioSource
		sc.AudioSourceHash = first.AudioSourceHash
		q.notifyDataChanged(row, ColAudioSource)
	}
}
