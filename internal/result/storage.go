package result

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

const runSetFile = "results.json"

// CreateRunDir makes a timestamped directory under baseDir/runs and
// repoints the baseDir/latest symlink at it.
func CreateRunDir(baseDir string) (string, error) {
	runsDir := filepath.Join(baseDir, "runs")
	stamp := time.Now().UTC().Format("2006-01-02T15-04-05")
	runDir := filepath.Join(runsDir, stamp)
	runDir, err := filepath.Abs(runDir)
	if err != nil {
		return "", fmt.Errorf("resolving run dir: %w", err)
	}
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", fmt.Errorf("creating run dir: %w", err)
	}
	latest := filepath.Join(baseDir, "latest")
	os.Remove(latest)
	if err := os.Symlink(runDir, latest); err != nil {
		return "", fmt.Errorf("creating latest symlink: %w", err)
	}
	return runDir, nil
}

// NewRunSet stamps a fresh run collection with an ID and creation time.
func NewRunSet(runs []RunResult) *RunSet {
	return &RunSet{
		ID:      uuid.NewString(),
		Created: time.Now().UTC(),
		Runs:    runs,
	}
}

func WriteRunSet(runDir string, set *RunSet) error {
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return fmt.Errorf("creating run dir: %w", err)
	}
	data, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling results: %w", err)
	}
	return os.WriteFile(filepath.Join(runDir, runSetFile), data, 0o644)
}

// ReadRunSet loads the results file from runDir. The path may also name
// the results file itself.
func ReadRunSet(runDir string) (*RunSet, error) {
	path := runDir
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(runDir, runSetFile)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading results: %w", err)
	}
	var set RunSet
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("parsing results %s: %w", path, err)
	}
	return &set, nil
}
