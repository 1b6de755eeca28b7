// Package storage records control sessions to disk and reads them back.
//
// Each session lives in its own directory under the store root:
//
//	<root>/<id>/metadata.json
//	<root>/<id>/ticks.csv
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("storage: session not found")

const (
	metadataFile = "metadata.json"
	ticksFile    = "ticks.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type SessionMetadata struct {
	ID       string             `json:"id"`
	Mode     string             `json:"mode"`
	Scenario string             `json:"scenario,omitempty"`
	Started  time.Time          `json:"started"`
	Ended    time.Time          `json:"ended,omitempty"`
	Period   float64            `json:"period"`
	Mass     float64            `json:"mass"`
	LeverArm float64            `json:"lever_arm"`
	Params   map[string]float64 `json:"params"`
	Ticks    uint64             `json:"ticks"`
	Overruns uint64             `json:"overruns"`
	Failures uint64             `json:"publish_failures"`
	Metrics  map[string]float64 `json:"metrics,omitempty"`
}

func newSessionID(now time.Time) string {
	return fmt.Sprintf("%s_%s", now.Format("20060102_150405"), uuid.NewString()[:8])
}

func (s *Store) path(id string, file string) string {
	return filepath.Join(s.baseDir, id, file)
}

func (s *Store) writeMetadata(meta *SessionMetadata) error {
	f, err := os.Create(s.path(meta.ID, metadataFile))
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

// List returns every readable session, most recent first.
func (s *Store) List() ([]SessionMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []SessionMetadata{}, nil
		}
		return nil, err
	}

	sessions := make([]SessionMetadata, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		sessions = append(sessions, *meta)
	}

	sort.Slice(sessions, func(i, j int) bool { return sessions[i].Started.After(sessions[j].Started) })
	return sessions, nil
}

func (s *Store) Load(id string) (*SessionMetadata, error) {
	data, err := os.ReadFile(s.path(id, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}

	var meta SessionMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: %s: %w", id, err)
	}
	return &meta, nil
}
