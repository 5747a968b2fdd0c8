package client

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	goerrors "github.com/goliatone/go-errors"
)

// MarkerName is the flag recording that this machine held a session at
// some point. It carries no token and no user data: its only job is to
// let a fresh process skip the verify round-trip when nobody ever
// logged in here.
const MarkerName = "hasAttemptedLogin"

// MarkerStore persists the attempted-login marker.
type MarkerStore interface {
	Present() (bool, error)
	Set() error
	Clear() error
}

// MemoryMarker is the in-process MarkerStore, used in tests and in
// callers that do not want anything on disk.
type MemoryMarker struct {
	mu  sync.Mutex
	set bool
}

func NewMemoryMarker() *MemoryMarker {
	return &MemoryMarker{}
}

func (m *MemoryMarker) Present() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.set, nil
}

func (m *MemoryMarker) Set() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set = true
	return nil
}

func (m *MemoryMarker) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set = false
	return nil
}

// FileMarker stores the marker as a small JSON file.
type FileMarker struct {
	mu   sync.Mutex
	path string
}

func NewFileMarker(path string) *FileMarker {
	return &FileMarker{path: path}
}

type markerFile struct {
	HasAttemptedLogin bool `json:"hasAttemptedLogin"`
}

func (f *FileMarker) Present() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	raw, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to read marker file")
	}

	var m markerFile
	if err := json.Unmarshal(raw, &m); err != nil {
		// A corrupt marker reads as absent; the next Set rewrites it.
		return false, nil
	}

	return m.HasAttemptedLogin, nil
}

func (f *FileMarker) Set() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	raw, err := json.Marshal(markerFile{HasAttemptedLogin: true})
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to encode marker")
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to create marker directory")
	}

	if err := os.WriteFile(f.path, raw, 0o600); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to write marker file")
	}

	return nil
}

func (f *FileMarker) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to remove marker file")
	}

	return nil
}
