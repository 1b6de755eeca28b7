package storage

import (
	"encoding/json"
	"io"
)

type ExportData struct {
	Session SessionMetadata `json:"session"`
	Steps   int             `json:"steps"`
	Ticks   []TickRow       `json:"ticks"`
}

// ExportJSON writes a session's metadata and ticks as one JSON document.
func (s *Store) ExportJSON(id string, w io.Writer) error {
	meta, err := s.Load(id)
	if err != nil {
		return err
	}
	rows, err := s.LoadTicks(id)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{Session: *meta, Steps: len(rows), Ticks: rows})
}
