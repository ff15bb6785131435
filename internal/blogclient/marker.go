package blogclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
)

// Marker remembers that a session probably exists so the client can
// try a silent refresh on startup. It is a hint only: the actual
// credential is the HttpOnly cookie the client never sees directly.
type Marker struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type MarkerStore interface {
	// Load returns the marker and whether one was stored
	Load() (Marker, bool, error)
	Save(m Marker) error
	Clear() error
}

// FileMarkerStore keeps the marker as a JSON file
type FileMarkerStore struct {
	Path string
}

func NewFileMarkerStore(path string) *FileMarkerStore {
	return &FileMarkerStore{Path: path}
}

func (s *FileMarkerStore) Load() (Marker, bool, error) {
	var m Marker

	data, err := os.ReadFile(s.Path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return m, false, nil
	case err != nil:
		return m, false, fmt.Errorf("can't read marker file. Err: %w", err)
	}

	if err := json.Unmarshal(data, &m); err != nil {
		return m, false, fmt.Errorf("can't decode marker file. Err: %w", err)
	}
	return m, true, nil
}

func (s *FileMarkerStore) Save(m Marker) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("can't encode marker. Err: %w", err)
	}

	if err := os.WriteFile(s.Path, data, 0o600); err != nil {
		return fmt.Errorf("can't write marker file. Err: %w", err)
	}
	return nil
}

func (s *FileMarkerStore) Clear() error {
	err := os.Remove(s.Path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("can't remove marker file. Err: %w", err)
	}
	return nil
}

// memMarkerStore is the default when no file path is configured
type memMarkerStore struct {
	mu     sync.Mutex
	marker Marker
	set    bool
}

func (s *memMarkerStore) Load() (Marker, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.marker, s.set, nil
}

func (s *memMarkerStore) Save(m Marker) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marker, s.set = m, true
	return nil
}

func (s *memMarkerStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marker, s.set = Marker{}, false
	return nil
}
