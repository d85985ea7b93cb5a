package blob

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/trafficpulse/waze-incident-service/internal/domain"
)

// FileStore keeps the master/latest pair as JSON files in a data directory.
// Each file is written to a temp file and renamed into place, so a concurrent
// reader never observes a half-written document.
type FileStore struct {
	dir    string
	logger *slog.Logger
}

// NewFileStore creates the data directory if needed.
func NewFileStore(dir string, logger *slog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{dir: dir, logger: logger}, nil
}

// Load reads the persisted views. A missing file yields an empty slice: the
// first run of a deployment starts from nothing. The latest view is loaded
// best-effort since the first poll cycle replaces it anyway.
func (s *FileStore) Load(_ context.Context) (State, error) {
	master, err := s.readView(masterName)
	if err != nil {
		return State{}, err
	}

	latest, err := s.readView(latestName)
	if err != nil {
		s.logger.Warn("latest view unreadable, starting empty", "error", err)
		latest = nil
	}

	return State{Master: master, Latest: latest}, nil
}

// Save writes both views. The master is written first: if the process dies
// between the two renames, the master (the view that cannot be regenerated)
// is the one already durable.
func (s *FileStore) Save(_ context.Context, master, latest []domain.Incident) error {
	if err := s.writeView(masterName, master); err != nil {
		return err
	}
	return s.writeView(latestName, latest)
}

func (s *FileStore) readView(name string) ([]domain.Incident, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	var incidents []domain.Incident
	if err := json.Unmarshal(data, &incidents); err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return incidents, nil
}

func (s *FileStore) writeView(name string, incidents []domain.Incident) error {
	if incidents == nil {
		incidents = []domain.Incident{}
	}
	data, err := json.MarshalIndent(incidents, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", name, err)
	}

	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", name, err)
	}
	return nil
}
