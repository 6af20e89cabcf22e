package database

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"studentresults/internal/model"
)

// JSONFile stores all records in one pretty-printed JSON object keyed by student ID.
type JSONFile struct {
	path string
}

func NewJSONFile(path string) *JSONFile {
	return &JSONFile{path: path}
}

func (f *JSONFile) Location() string {
	return f.path
}

// Load reads the file. A missing file is an empty snapshot. A file that cannot
// be read or parsed returns an error wrapping model.ErrLoadCorruption.
func (f *JSONFile) Load() (Snapshot, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Snapshot{}, nil
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", model.ErrLoadCorruption, err)
	}

	data = bytes.TrimSpace(data)
	if !json.Valid(data) || data[0] != '{' {
		return Snapshot{}, fmt.Errorf("%w: %s: not a JSON object", model.ErrLoadCorruption, f.path)
	}
	// A repeated key keeps its first position and its last value.
	entries := orderedmap.New[string, json.RawMessage]()
	if err := entries.UnmarshalJSON(data); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %s: %v", model.ErrLoadCorruption, f.path, err)
	}

	var snap Snapshot
	records := orderedmap.New[string, model.StudentRecord](entries.Len())
	for e := entries.Oldest(); e != nil; e = e.Next() {
		var rec model.StudentRecord
		if err := json.Unmarshal(e.Value, &rec); err != nil {
			snap.Rejected = append(snap.Rejected, Rejection{ID: e.Key, Err: err})
			continue
		}
		restored, err := model.RestoreRecord(e.Key, rec)
		if err != nil {
			snap.Rejected = append(snap.Rejected, Rejection{ID: e.Key, Err: err})
			continue
		}
		records.Set(restored.ID, restored)
	}
	for r := records.Oldest(); r != nil; r = r.Next() {
		snap.Records = append(snap.Records, r.Value)
	}
	return snap, nil
}

// Save writes to a temporary file and renames it over the target.
func (f *JSONFile) Save(records []model.StudentRecord) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	byID := orderedmap.New[string, model.StudentRecord](len(records))
	for _, rec := range records {
		byID.Set(rec.ID, rec)
	}
	if err := enc.Encode(byID); err != nil {
		return fmt.Errorf("encode %s: %w", f.path, err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", f.path, err)
	}
	return nil
}
