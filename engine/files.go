package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/mkantola/beatroll"
)

// ErrValidation marks persisted song data that could not be loaded. The
// model never keeps partial state from a bad file: on any load failure it
// falls back to a fresh default song and returns the error wrapped with
// ErrValidation for the caller to report.
var ErrValidation = errors.New("invalid song data")

// ReadSong loads a song from persisted form, trying JSON first and YAML
// second, applying the defaults for missing fields. On failure the model is
// reset to a fresh default song.
func (m *Model) ReadSong(r io.Reader) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return m.loadFailed(fmt.Errorf("%w: %v", ErrValidation, err))
	}
	var song beatroll.Song
	if errJSON := json.Unmarshal(b, &song); errJSON != nil {
		if errYaml := yaml.Unmarshal(b, &song); errYaml != nil {
			return m.loadFailed(fmt.Errorf("%w: not valid JSON (%v) nor YAML (%v)", ErrValidation, errJSON, errYaml))
		}
	}
	song.SetDefaults()
	if err := song.Validate(); err != nil {
		return m.loadFailed(fmt.Errorf("%w: %v", ErrValidation, err))
	}
	m.song = song
	m.currentTrack = 0
	m.sendSong()
	return nil
}

// WriteSong writes the song in YAML form.
func (m *Model) WriteSong(w io.Writer) error {
	contents, err := yaml.Marshal(m.song)
	if err != nil {
		return fmt.Errorf("marshaling song: %v", err)
	}
	if _, err := w.Write(contents); err != nil {
		return fmt.Errorf("writing song: %v", err)
	}
	return nil
}

// WriteSongJSON writes the song in JSON form.
func (m *Model) WriteSongJSON(w io.Writer) error {
	contents, err := json.MarshalIndent(m.song, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling song: %v", err)
	}
	if _, err := w.Write(contents); err != nil {
		return fmt.Errorf("writing song: %v", err)
	}
	return nil
}

// LoadSong loads a song from a file.
func (m *Model) LoadSong(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return m.loadFailed(fmt.Errorf("%w: %v", ErrValidation, err))
	}
	defer f.Close()
	return m.ReadSong(f)
}

// SaveSong saves the song to a file, choosing the format by extension:
// .json gets JSON, everything else YAML.
func (m *Model) SaveSong(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %v: %v", path, err)
	}
	defer f.Close()
	if filepath.Ext(path) == ".json" {
		return m.WriteSongJSON(f)
	}
	return m.WriteSong(f)
}

// NewSong replaces the song with a fresh default one.
func (m *Model) NewSong() {
	m.song = beatroll.NewSong()
	m.currentTrack = 0
	m.sendSong()
}

func (m *Model) loadFailed(err error) error {
	m.NewSong()
	return err
}
