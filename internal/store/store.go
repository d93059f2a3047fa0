package store

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/bondsim/internal/bondgraph"
	"github.com/san-kum/bondsim/internal/symbolic"
)

const (
	metadataFile  = "metadata.json"
	equationsFile = "equations.csv"
)

var equationsHeader = []string{"state", "derivative", "rhs"}

// Store keeps derivation runs under baseDir, one directory per run.
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
	ID         string    `json:"id"`
	Model      string    `json:"model"`
	Root       string    `json:"root"`
	Timestamp  time.Time `json:"timestamp"`
	States     []string  `json:"states"`
	Inputs     []string  `json:"inputs"`
	Parameters []string  `json:"parameters"`
	Removed    []string  `json:"removed,omitempty"`
}

// EquationRecord is one row of equations.csv.
type EquationRecord struct {
	State      string
	Derivative string
	RHS        string
}

// Run describes what produced a derivation.
type Run struct {
	Model string
	Root  string
	// Removed lists bonds deleted before deriving, as "junction:position".
	Removed []string
}

// Save writes the derivation under a fresh run ID and returns the ID.
func (s *Store) Save(run Run, d *bondgraph.Derivation) (string, error) {
	if d == nil {
		return "", errors.New("store: nil derivation")
	}
	runID := uuid.New().String()
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Model:      run.Model,
		Root:       run.Root,
		Timestamp:  time.Now(),
		States:     names(d.States),
		Inputs:     names(d.Inputs),
		Parameters: names(d.Parameters),
		Removed:    run.Removed,
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

	csvFile, err := os.Create(filepath.Join(runDir, equationsFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := w.Write(equationsHeader); err != nil {
		return "", err
	}
	for i, eq := range d.Equations {
		row := []string{d.States[i].String(), eq.LHS.String(), eq.RHS.String()}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return runID, nil
}

// List returns every readable run, newest first. Directories without a
// valid metadata file are skipped.
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
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	return &meta, nil
}

func (s *Store) LoadEquations(runID string) ([]EquationRecord, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, equationsFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(equationsHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	if len(records) < 2 {
		return []EquationRecord{}, nil
	}

	out := make([]EquationRecord, 0, len(records)-1)
	for _, rec := range records[1:] {
		out = append(out, EquationRecord{State: rec[0], Derivative: rec[1], RHS: rec[2]})
	}
	return out, nil
}

func names(syms []symbolic.Symbol) []string {
	out := make([]string, len(syms))
	for i, s := range syms {
		out[i] = s.String()
	}
	return out
}
