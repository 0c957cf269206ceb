package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/san-kum/dsaviz/internal/algorithms"
	"github.com/san-kum/dsaviz/internal/dataset"
	"github.com/san-kum/dsaviz/internal/visual"
	"github.com/san-kum/dsaviz/internal/visualizer"
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

type RunMetadata struct {
	ID         string             `json:"id"`
	Label      string             `json:"label,omitempty"`
	Algorithm  string             `json:"algorithm"`
	Family     algorithms.Family  `json:"family"`
	Kind       visual.Kind        `json:"kind"`
	Timestamp  time.Time          `json:"timestamp"`
	Speed      int                `json:"speed"`
	Data       dataset.Params     `json:"data"`
	Params     algorithms.Params  `json:"params"`
	Status     visualizer.Status  `json:"status"`
	StepsTaken int                `json:"steps_taken"`
	Found      *bool              `json:"found,omitempty"`
	Index      *int               `json:"index,omitempty"`
	Order      []int              `json:"order,omitempty"`
	Metrics    map[string]float64 `json:"metrics"`
}

// NewMetadata fills the outcome fields from a finished run.
func NewMetadata(spec algorithms.Spec, data dataset.Params, params algorithms.Params, speed int, res visualizer.Result) RunMetadata {
	return RunMetadata{
		Algorithm:  spec.Name,
		Family:     spec.Family,
		Kind:       spec.Scene,
		Speed:      speed,
		Data:       data,
		Params:     params,
		Status:     res.Status,
		StepsTaken: res.StepsTaken,
		Found:      res.Found,
		Index:      res.Index,
		Order:      res.Order,
		Metrics:    res.Metrics,
	}
}

// Save writes metadata.json and frames.csv under a fresh run directory and
// returns the run id.
func (s *Store) Save(meta RunMetadata, frames []FrameRecord) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", meta.Algorithm, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = now
	if meta.Metrics == nil {
		meta.Metrics = map[string]float64{}
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "frames.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := w.Write(frameHeader); err != nil {
		return "", err
	}
	for _, f := range frames {
		if err := w.Write(f.row()); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return runID, nil
}

// List returns saved runs, oldest first. Unreadable run directories are
// skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadFrames(runID string) ([]FrameRecord, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "frames.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []FrameRecord{}, nil
	}

	frames := make([]FrameRecord, 0, len(records)-1)
	for i, record := range records[1:] {
		f, err := parseRow(record)
		if err != nil {
			return nil, fmt.Errorf("frames.csv line %d: %w", i+2, err)
		}
		frames = append(frames, f)
	}
	return frames, nil
}
