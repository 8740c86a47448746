package backend

import (
	"encoding/json"
	"log"
	"reflect"
)

// Settings is the per-project key/value store. Values arrive from the
// frontend as JSON, so numbers surface as float64; GetInt normalizes them.
type Settings struct {
	values  map[string]any
	changed []func(key string, value any)
}

// NewSettings returns a settings store seeded with the project defaults:
// transition_time and default_delay in milliseconds.
func NewSettings() *Settings {
	return &Settings{
		values: map[string]any{
			"transition_time": 1000,
			"default_delay":   5000,
		},
	}
}

// OnChanged registers a listener invoked after a value actually changes.
func (s *Settings) OnChanged(fn func(key string, value any)) {
	s.changed = append(s.changed, fn)
}

// Set stores a value. Writing the value a key already holds is a no-op and
// fires no event; the return reports whether anything changed.
func (s *Settings) Set(key string, value any) bool {
	if old, ok := s.values[key]; ok && settingsEqual(old, value) {
		return false
	}
	s.values[key] = value
	for _, fn := range s.changed {
		fn(key, value)
	}
	return true
}

// settingsEqual compares setting values for the no-op check. Numbers are
// normalized first, so a float64 arriving from JSON matches the int default
// it overwrites; composite values (slices, maps) get a deep comparison, which
// never panics on uncomparable types.
func settingsEqual(old, value any) bool {
	of, ook := settingNumber(old)
	vf, vok := settingNumber(value)
	if ook && vok {
		return of == vf
	}
	return reflect.DeepEqual(old, value)
}

func settingNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// Get returns the raw value for key, nil when unset.
func (s *Settings) Get(key string) any {
	return s.values[key]
}

// GetInt returns the value for key as an int, or fallback when the key is
// unset or not numeric.
func (s *Settings) GetInt(key string, fallback int) int {
	switch v := s.values[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return fallback
}

// ToJSON serializes the settings map as a JSON document and returns it as a
// string, the form embedded in project files.
func (s *Settings) ToJSON() (string, error) {
	data, err := json.Marshal(s.values)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// FromJSON applies every key of a serialized settings document over the
// current values through Set, so listeners see the loaded values.
func (s *Settings) FromJSON(raw string) error {
	var loaded map[string]any
	if err := json.Unmarshal([]byte(raw), &loaded); err != nil {
		return err
	}
	for key, value := range loaded {
		log.Printf("Loading setting %s", key)
		s.Set(key, value)
	}
	return nil
}
