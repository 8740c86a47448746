package backend

import (
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/sqweek/dialog"
	"github.com/wailsapp/wails/v3/pkg/application"
	"golang.org/x/sync/errgroup"

	"multivision/backend/media"
)

// File names skipped during directory import: sidecar metadata and project
// files living next to the media.
var importSkipExtensions = map[string]bool{
	".xmp": true,
	".pmv": true,
}

const maxConcurrentImports = 4

// ShowService is the Wails-facing facade over one open project: it owns the
// project, the runner and the mutex that serializes frontend calls against
// background workers, and it bridges engine listeners to frontend events.
type ShowService struct {
	app *application.App
	mu  sync.Mutex

	project *Project
	runner  *SceneRunner
	view    *eventView
	audio   *eventAudio
}

func NewShowService() *ShowService {
	s := &ShowService{}
	s.resetProjectLocked()
	return s
}

// SetApp sets the application instance for event emission
func (s *ShowService) SetApp(app *application.App) {
	s.app = app
	s.view.app = app
	s.audio.app = app
}

// resetProjectLocked replaces the open project with a fresh one and rewires
// the runner and all event bridges.
func (s *ShowService) resetProjectLocked() {
	s.project = NewProject()
	s.view = &eventView{app: s.app}
	s.audio = &eventAudio{app: s.app, volume: 1}
	s.runner = NewSceneRunner(s.project.Show, s.project.Settings, s.view, s.audio)

	seq := s.project.Show.Sequence()
	seq.OnRowsInserted(func(first, last int) {
		s.emit("sequence:rowsInserted", map[string]int{"first": first, "last": last})
	})
	seq.OnRowsRemoved(func(first, last int) {
		s.emit("sequence:rowsRemoved", map[string]int{"first": first, "last": last})
	})
	seq.OnDataChanged(func(row, col int) {
		s.emit("sequence:dataChanged", map[string]int{"row": row, "col": col})
	})
	seq.OnReset(func() {
		s.emit("sequence:reset", nil)
	})

	s.project.Show.OnStateChanged(func(st ShowState) {
		s.emit("show:stateChanged", st.String())
	})
	s.project.Settings.OnChanged(func(key string, value any) {
		s.emit("settings:changed", map[string]any{"key": key, "value": value})
	})
	s.project.Bin.OnItemAdded(func(category, path string) {
		s.emit("bin:itemAdded", map[string]string{"category": category, "path": path})
	})
	s.project.Bin.OnReset(func() {
		s.emit("bin:reset", nil)
	})
	s.runner.OnSceneChanged(func(index int) {
		s.emit("show:sceneChanged", index)
	})
}

func (s *ShowService) emit(name string, payload any) {
	if s.app != nil {
		s.app.Event.Emit(name, payload)
	}
}

// EmitProgress emits a progress event through the Wails event system
func (s *ShowService) EmitProgress(progress ProgressReport) {
	if s.app != nil {
		s.app.Event.Emit("progress", progress)
	}
}

// NewProject discards the open project and starts an empty one.
func (s *ShowService) NewProject() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runner.StopShow()
	s.resetProjectLocked()
	s.emit("project:new", nil)
}

// PickProjectFile opens a native file chooser for an existing project file
// and returns the chosen path, "" when the user cancels.
func (s *ShowService) PickProjectFile() string {
	path, err := dialog.File().Filter("Multivision project", "pmv").Load()
	if err != nil {
		return ""
	}
	return path
}

// PickSaveFile opens a native file chooser for a save target and returns the
// chosen path, "" when the user cancels.
func (s *ShowService) PickSaveFile() string {
	path, err := dialog.File().Filter("Multivision project", "pmv").Save()
	if err != nil {
		return ""
	}
	return path
}

// PickImportDirectory opens a native directory chooser for import and
// returns the chosen path, "" when the user cancels.
func (s *ShowService) PickImportDirectory() string {
	path, err := dialog.Directory().Title("Import media directory").Browse()
	if err != nil {
		return ""
	}
	return path
}

// LoadProjectAsync loads a project file in the background, emitting progress
// events while scenes are rebuilt.
func (s *ShowService) LoadProjectAsync(path string) error {
	if path == "" {
		return fmt.Errorf("no project file given")
	}
	go func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		s.runner.StopShow()
		s.resetProjectLocked()

		err := s.project.Load(path, func(percent int, name string) {
			s.EmitProgress(ProgressReport{
				Percent:  percent,
				FileName: name,
				Message:  fmt.Sprintf("Loading %s", name),
			})
		})
		if err != nil {
			log.Printf("Could not load project %s: %v", path, err)
			s.EmitProgress(ProgressReport{Message: "Load failed", Error: err.Error()})
			return
		}
		s.EmitProgress(ProgressReport{Percent: 100, Message: "Completed", Completed: true})
	}()
	return nil
}

// SaveProjectAsync saves the project in the background. With storePixmaps the
// scene previews are embedded in the file.
func (s *ShowService) SaveProjectAsync(path string, storePixmaps bool) error {
	if path == "" {
		return fmt.Errorf("no save file given")
	}
	go func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		err := s.project.Save(path, storePixmaps, func(percent int, name string) {
			s.EmitProgress(ProgressReport{
				Percent:  percent,
				FileName: name,
				Message:  fmt.Sprintf("Saving %s", name),
			})
		})
		if err != nil {
			log.Printf("Could not save project to %s: %v", path, err)
			s.EmitProgress(ProgressReport{Message: "Save failed", Error: err.Error()})
			return
		}
		s.project.Settings.Set("save_file", path)
		s.EmitProgress(ProgressReport{Percent: 100, Message: "Completed", Completed: true})
	}()
	return nil
}

// ImportDirectoryAsync imports every supported media file of a directory in
// the background.
func (s *ShowService) ImportDirectoryAsync(dir string) error {
	if dir == "" {
		return fmt.Errorf("no directory given")
	}
	go func() {
		if err := s.ImportDirectory(dir); err != nil {
			log.Printf("Directory import failed: %v", err)
			s.EmitProgress(ProgressReport{Message: "Import failed", Error: err.Error()})
		}
	}()
	return nil
}

// ImportDirectory walks one directory level, classifies every regular file
// by content, and catalogs the matches: stills and video additionally become
// scenes at the end of the sequence. Files are listed in name order and
// applied in that order; the per-file probing runs on a bounded worker pool.
func (s *ShowService) ImportDirectory(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || entry.Type()&os.ModeSymlink != 0 {
			continue
		}
		if importSkipExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)

	type classified struct {
		category string
		preview  image.Image
	}
	results := make([]classified, len(paths))

	var g errgroup.Group
	g.SetLimit(maxConcurrentImports)
	for i, path := range paths {
		g.Go(func() error {
			category, ok := media.CategoryForFile(path)
			if !ok {
				return nil
			}
			results[i] = classified{category: category, preview: importPreview(category, path)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	total := len(paths)
	imported := 0
	for i, path := range paths {
		s.EmitProgress(ProgressReport{
			Percent:  (i + 1) * 100 / total,
			FileName: filepath.Base(path),
			Message:  fmt.Sprintf("Importing %s", filepath.Base(path)),
		})

		r := results[i]
		if r.category == "" {
			log.Printf("Skipping unsupported file %s", path)
			continue
		}

		s.project.Bin.Add(r.category, path, binThumbnailFromPreview(r.category, r.preview))

		switch r.category {
		case media.CategoryStills:
			s.appendSceneLocked(path, SceneTypeStill, r.preview)
		case media.CategoryVideo:
			s.appendSceneLocked(path, SceneTypeVideo, r.preview)
		}
		imported++
	}

	s.EmitProgress(ProgressReport{
		Percent:   100,
		Message:   fmt.Sprintf("Imported %d of %d files", imported, total),
		Completed: true,
	})
	return nil
}

func (s *ShowService) appendSceneLocked(path string, sceneType SceneType, preview image.Image) {
	if preview == nil {
		preview = media.SolidPlaceholder()
	}
	sc := NewScene(path, sceneType, media.Scaled(preview, media.PreviewSize))

	tags, err := media.ExifTags(path)
	if err != nil {
		log.Printf("Could not read metadata from %s: %v", path, err)
	} else {
		sc.Exif = tags
	}

	if sceneType == SceneTypeVideo {
		if hasAudio, err := media.HasAudioStream(path); err == nil {
			sc.PlayVideoAudio = hasAudio
		}
	}

	s.project.Show.Sequence().Append(sc)
}

// importPreview derives the raw preview image for an imported asset; scaling
// to preview and icon sizes happens at the point of use.
func importPreview(category, path string) image.Image {
	switch category {
	case media.CategoryStills:
		img, err := media.LoadImage(path)
		if err != nil {
			log.Printf("Could not load %s: %v", path, err)
			return nil
		}
		return img
	case media.CategoryVideo:
		img, err := media.Keyframe(path)
		if err != nil {
			log.Printf("Could not extract keyframe from %s: %v", path, err)
			return nil
		}
		return img
	}
	return nil
}

func binThumbnailFromPreview(category string, preview image.Image) image.Image {
	switch category {
	case media.CategoryStills, media.CategoryVideo:
		if preview != nil {
			return media.Scaled(preview, media.IconSize)
		}
		return media.SolidPlaceholder()
	case media.CategoryAudio:
		return media.SolidPlaceholder()
	}
	return nil
}

// Sequence editing, bound to the frontend table.

// SceneTable returns the sequence as display rows for the frontend table.
func (s *ShowService) SceneTable() []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq := s.project.Show.Sequence()
	rows := make([]map[string]any, 0, seq.RowCount())
	for row := 0; row < seq.RowCount(); row++ {
		sc, err := seq.Item(row)
		if err != nil {
			continue
		}
		icon := ""
		if sc.Icon != nil {
			if encoded, err := media.PNGBase64(sc.Icon); err == nil {
				icon = encoded
			}
		}
		rows = append(rows, map[string]any{
			"source":      sc.DisplayName(),
			"audioSource": filepath.Base(sc.AudioSource),
			"captureTime": sc.CaptureTime(),
			"duration":    TimeStringFromMsec(sc.DwellMillis(s.project.Settings.GetInt("default_delay", 5000))),
			"inPoint":     sc.InPoint,
			"outPoint":    sc.OutPoint,
			"notes":       sc.Notes,
			"icon":        icon,
		})
	}
	return rows
}

// SetSceneField edits one cell of the sequence table.
func (s *ShowService) SetSceneField(row, col, value int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.project.Show.Sequence().SetField(row, col, value)
}

// SetSceneNotes replaces the presenter notes of one scene.
func (s *ShowService) SetSceneNotes(row int, notes string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, err := s.project.Show.Sequence().Item(row)
	if err != nil {
		return false
	}
	sc.Notes = notes
	return true
}

// RemoveScene deletes one row from the sequence.
func (s *ShowService) RemoveScene(row int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.project.Show.Sequence().Remove(row)
}

// MoveScene reorders the sequence by drag and drop.
func (s *ShowService) MoveScene(from, to int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.project.Show.Sequence().Move(from, to)
}

// DropAudioOnScene binds an audio file from the bin to one scene.
func (s *ShowService) DropAudioOnScene(row int, path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.project.Show.Sequence().DropAudio(row, path)
}

// SortScenes sorts the sequence by a table column.
func (s *ShowService) SortScenes(column int, ascending bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.project.Show.Sequence().Sort(column, ascending)
}

// InheritAudio spreads the first selected scene's audio track over the whole
// selection.
func (s *ShowService) InheritAudio(rows []int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.project.Show.Sequence().InheritAudio(rows)
}

// BinItems returns the paths cataloged under one bin category.
func (s *ShowService) BinItems(category string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.project.Bin.Items(category)
	paths := make([]string, 0, len(items))
	for _, item := range items {
		paths = append(paths, item.Path)
	}
	return paths
}

// Track parses a GPX asset into its waypoints for the map view.
func (s *ShowService) Track(path string) ([]media.Waypoint, error) {
	return media.TrackFromGPX(path)
}

// Settings access.

// GetSetting returns one project setting.
func (s *ShowService) GetSetting(key string) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.project.Settings.Get(key)
}

// SetSetting stores one project setting.
func (s *ShowService) SetSetting(key string, value any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.project.Settings.Set(key, value)
}

// Playback control, bound to the presenter window.

func (s *ShowService) StartShow()      { s.runner.StartShow() }
func (s *ShowService) PauseShow()      { s.runner.PauseShow() }
func (s *ShowService) StopShow()       { s.runner.StopShow() }
func (s *ShowService) NextScene()      { s.runner.Next() }
func (s *ShowService) PreviousScene()  { s.runner.Prev() }
func (s *ShowService) SeekScene(i int) { s.runner.Seek(i) }

// ShowState returns the current playback state name.
func (s *ShowService) ShowState() string {
	return s.project.Show.State().String()
}

// ControlAudio executes one audio action on the background player.
func (s *ShowService) ControlAudio(action string) {
	s.runner.ControlAudio(action)
}

// SetVolume sets the reference playback volume.
func (s *ShowService) SetVolume(volume float64) {
	s.runner.SetVolume(volume)
}
