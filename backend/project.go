package backend

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
)

// Project bundles everything that gets persisted: the show, the asset bin
// and the settings.
type Project struct {
	Show     *Show
	Bin      *ProjectBin
	Settings *Settings
}

func NewProject() *Project {
	return &Project{
		Show:     NewShow(),
		Bin:      NewProjectBin(),
		Settings: NewSettings(),
	}
}

// projectFile is the on-disk document. The settings fragment is a JSON
// document nested as a string; every fragment is optional so partial files
// still load.
type projectFile struct {
	Settings   *string             `json:"settings,omitempty"`
	ProjectBin map[string][]string `json:"project_bin,omitempty"`
	Scenes     []sceneRecord       `json:"scenes,omitempty"`
}

// Save writes the project as gzip-compressed JSON. Scene previews are
// embedded when storePixmaps is set, which makes files self-contained at the
// cost of size. The progress callback is invoked per scene.
func (p *Project) Save(path string, storePixmaps bool, progress func(percent int, name string)) error {
	var doc projectFile

	settings, err := p.Settings.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize settings: %w", err)
	}
	doc.Settings = &settings
	doc.ProjectBin = p.Bin.ToJSON()
	doc.Scenes = p.Show.scenesJSON(storePixmaps, progress)

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to serialize project: %w", err)
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return fmt.Errorf("failed to compress project: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to compress project: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write project file: %w", err)
	}
	log.Printf("Saved project to %s (%d scenes, %d bytes)", path, len(doc.Scenes), buf.Len())
	return nil
}

// Load replaces the project contents from a file. Files written before
// compression was introduced are plain JSON, so a failed gzip header falls
// back to parsing the raw bytes. Missing fragments leave the corresponding
// part at its defaults; the save_file setting is updated last so it is never
// clobbered by the loaded settings fragment.
func (p *Project) Load(path string, progress func(percent int, name string)) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read project file: %w", err)
	}

	data := raw
	if zr, err := gzip.NewReader(bytes.NewReader(raw)); err == nil {
		if inflated, err := io.ReadAll(zr); err == nil {
			data = inflated
		} else {
			return fmt.Errorf("failed to decompress project file: %w", err)
		}
		zr.Close()
	} else {
		log.Printf("Project file %s is not compressed, reading as plain JSON", path)
	}

	var doc projectFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse project file: %w", err)
	}

	if doc.Settings != nil {
		if err := p.Settings.FromJSON(*doc.Settings); err != nil {
			log.Printf("Ignoring unreadable settings fragment: %v", err)
		}
	}

	p.Bin.Clear()
	if doc.ProjectBin != nil {
		p.Bin.FromJSON(doc.ProjectBin)
	}

	p.Show.loadScenes(doc.Scenes, progress)

	p.Settings.Set("save_file", path)
	log.Printf("Loaded project from %s (%d scenes)", path, len(doc.Scenes))
	return nil
}
