package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/coastsim/internal/coasting"
)

const (
	metadataFile = "metadata.json"
	samplesFile  = "samples.csv"
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
	ID              string             `json:"id"`
	Name            string             `json:"name"`
	SessionID       string             `json:"session_id"`
	Timestamp       time.Time          `json:"timestamp"`
	DecayRatio      float64            `json:"decay_ratio"`
	MinSpeed        float64            `json:"min_speed"`
	InitialVelocity float64            `json:"initial_velocity"`
	FrameRate       int                `json:"frame_rate"`
	FrameInterval   int                `json:"frame_interval"`
	StopTime        float64            `json:"stop_time"`
	StopDistance    float64            `json:"stop_distance"`
	Outcome         string             `json:"outcome"`
	Samples         int                `json:"samples"`
	Metrics         map[string]float64 `json:"metrics"`
}

// Save writes meta and samples to a new run directory and returns the run ID.
// ID, Timestamp and Samples are filled in.
func (s *Store) Save(meta RunMetadata, samples []coasting.Sample) (string, error) {
	name := meta.Name
	if name == "" {
		name = "coast"
	}
	runID := fmt.Sprintf("%s_%s", name, uuid.NewString()[:8])
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = time.Now()
	meta.Samples = len(samples)

	if err := writeMetadata(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeSamples(filepath.Join(runDir, samplesFile), samples); err != nil {
		return "", err
	}

	return runID, nil
}

func writeMetadata(path string, meta RunMetadata) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func writeSamples(path string, samples []coasting.Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"elapsed", "velocity", "distance"}); err != nil {
		return err
	}
	for _, sm := range samples {
		row := []string{
			strconv.FormatFloat(sm.Elapsed, 'f', 6, 64),
			strconv.FormatFloat(sm.Velocity, 'f', 6, 64),
			strconv.FormatFloat(sm.Distance, 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns every readable run, newest first.
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadSamples reads the samples of a run. Malformed rows are skipped.
func (s *Store) LoadSamples(runID string) ([]coasting.Sample, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, samplesFile))
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
		return []coasting.Sample{}, nil
	}

	samples := make([]coasting.Sample, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) < 3 {
			continue
		}
		var vals [3]float64
		ok := true
		for j := range vals {
			v, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				ok = false
				break
			}
			vals[j] = v
		}
		if !ok {
			continue
		}
		samples = append(samples, coasting.Sample{Elapsed: vals[0], Velocity: vals[1], Distance: vals[2]})
	}

	return samples, nil
}
