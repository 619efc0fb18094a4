package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/san-kum/gravsim/internal/dynamo"
)

const (
	metadataFile   = "metadata.json"
	trajectoryFile = "trajectory.csv"
)

// Store keeps one directory per run under baseDir.
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
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Timestamp   time.Time          `json:"timestamp"`
	Integrator  string             `json:"integrator"`
	Units       string             `json:"units"`
	Seed        int64              `json:"seed"`
	G           float64            `json:"g"`
	Softening   float64            `json:"softening"`
	TMax        float64            `json:"t_max"`
	MinDt       float64            `json:"min_dt"`
	DtOutput    float64            `json:"dt_output"`
	BodyNames   []string           `json:"body_names,omitempty"`
	Masses      []float64          `json:"masses"`
	Steps       int                `json:"steps"`
	Samples     int                `json:"samples"`
	FinalTime   float64            `json:"final_time"`
	EnergyDrift float64            `json:"energy_drift"`
	Metrics     map[string]float64 `json:"metrics"`
}

// Save writes the metadata and trajectory of a finished run. ID and
// Timestamp are assigned here; the run summary fields are taken from result.
func (s *Store) Save(meta RunMetadata, result *dynamo.Result) (string, error) {
	now := time.Now()
	meta.ID = fmt.Sprintf("%s_%d", meta.Name, now.UnixNano())
	meta.Timestamp = now
	meta.Steps = result.StepsTaken
	meta.Samples = len(result.Snapshots)
	meta.FinalTime = result.FinalTime
	meta.EnergyDrift = result.EnergyDrift
	meta.Metrics = result.Metrics

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, trajectoryFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteCSV(csvFile, result.Snapshots); err != nil {
		return "", err
	}

	return meta.ID, nil
}

// List returns every readable run, oldest first.
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

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
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

func (s *Store) LoadTrajectory(runID string) ([]dynamo.Snapshot, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, trajectoryFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ReadCSV(file)
}

// LoadResult rebuilds a result from a stored run. Final holds the last
// sampled state.
func (s *Store) LoadResult(runID string) (*RunMetadata, *dynamo.Result, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	snapshots, err := s.LoadTrajectory(runID)
	if err != nil {
		return nil, nil, err
	}

	result := &dynamo.Result{
		Snapshots:   snapshots,
		Metrics:     meta.Metrics,
		StepsTaken:  meta.Steps,
		FinalTime:   meta.FinalTime,
		EnergyDrift: meta.EnergyDrift,
	}
	if len(snapshots) > 0 && len(meta.Masses) == snapshots[0].NumBodies() {
		result.Final = snapshots[len(snapshots)-1].Bodies(meta.Masses)
	}
	return meta, result, nil
}
