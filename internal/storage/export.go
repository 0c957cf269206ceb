package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
)

type ExportData struct {
	Run    RunMetadata   `json:"run"`
	Frames []FrameRecord `json:"frames"`
}

// ExportJSON writes one run with all of its frames.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	frames, err := s.LoadFrames(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{Run: *meta, Frames: frames})
}

// ExportCSV rewrites frames.csv to w.
func (s *Store) ExportCSV(w io.Writer, runID string) error {
	frames, err := s.LoadFrames(runID)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(frameHeader); err != nil {
		return err
	}
	for _, f := range frames {
		if err := cw.Write(f.row()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
