// Package export encodes run results for external consumption. The
// normalized CSV is the primary format; JSON dumps the stored results
// verbatim, and table prints the normalized table for humans.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/ahoffer/benchtab/internal/normalize"
	"github.com/ahoffer/benchtab/internal/result"
	"github.com/ahoffer/benchtab/internal/runner"
)

// Write encodes the run set in the requested format. An empty run set
// writes nothing and succeeds: there is nothing to export.
func Write(set *result.RunSet, format string, w io.Writer) error {
	switch format {
	case "json":
		return writeJSON(set, w)
	case "table":
		return writeTable(set.Runs, w)
	case "csv":
		return writeCSV(set.Runs, w)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func writeCSV(runs []result.RunResult, w io.Writer) error {
	header, rows, err := normalize.Table(runs)
	if err != nil {
		return err
	}
	if header == nil {
		return nil
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("writing rows: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

func writeJSON(set *result.RunSet, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(set)
}

func writeTable(runs []result.RunResult, w io.Writer) error {
	header, rows, err := normalize.Table(runs)
	if err != nil {
		return err
	}
	if header == nil {
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	fmt.Fprintln(tw, strings.Repeat("-", 80))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// CollectRunSets loads every stored run set under baseDir/runs,
// reading files concurrently. Unreadable files are skipped with a
// warning so one corrupt run cannot block an export. Sets come back
// oldest first.
func CollectRunSets(baseDir string, maxWorkers int) ([]*result.RunSet, error) {
	var paths []string
	err := filepath.Walk(filepath.Join(baseDir, "runs"), func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.Name() == "results.json" {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", baseDir, err)
	}

	var (
		mu   sync.Mutex
		sets []*result.RunSet
	)
	jobs := make([]runner.Job, len(paths))
	for i, path := range paths {
		jobs[i] = func() error {
			set, err := result.ReadRunSet(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			mu.Lock()
			sets = append(sets, set)
			mu.Unlock()
			return nil
		}
	}
	for _, err := range runner.RunPool(maxWorkers, jobs) {
		log.Printf("warning: %v", err)
	}

	sort.Slice(sets, func(i, j int) bool {
		return sets[i].Created.Before(sets[j].Created)
	})
	return sets, nil
}

// Merge flattens multiple run sets into one, preserving set order. The
// merged set keeps the newest set's ID so exports stay traceable to a
// real run.
func Merge(sets []*result.RunSet) *result.RunSet {
	merged := &result.RunSet{}
	for _, set := range sets {
		merged.ID = set.ID
		merged.Created = set.Created
		merged.Runs = append(merged.Runs, set.Runs...)
	}
	return merged
}
