package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ahoffer/benchtab/internal/config"
	"github.com/ahoffer/benchtab/internal/export"
	"github.com/ahoffer/benchtab/internal/result"
	"github.com/spf13/cobra"
)

var (
	flagFormat string
	flagOutput string
	flagAll    bool
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [run-dir]",
		Short: "Export stored results as csv, json, or a table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}

			var set *result.RunSet
			if flagAll {
				sets, err := export.CollectRunSets(cfg.Results.Dir, 4)
				if err != nil {
					return err
				}
				set = export.Merge(sets)
			} else {
				runDir := filepath.Join(cfg.Results.Dir, "latest")
				if len(args) > 0 {
					runDir = args[0]
				}
				resolved, err := filepath.EvalSymlinks(runDir)
				if err != nil {
					return fmt.Errorf("resolving run dir: %w", err)
				}
				set, err = result.ReadRunSet(resolved)
				if err != nil {
					return err
				}
			}

			w := os.Stdout
			if flagOutput != "" {
				f, err := os.Create(flagOutput)
				if err != nil {
					return fmt.Errorf("creating %s: %w", flagOutput, err)
				}
				defer f.Close()
				w = f
			}
			return export.Write(set, flagFormat, w)
		},
	}
	cmd.Flags().StringVar(&flagFormat, "format", "csv", "output format (csv, json, table)")
	cmd.Flags().StringVarP(&flagOutput, "output", "o", "", "write to file instead of stdout")
	cmd.Flags().BoolVar(&flagAll, "all", false, "merge every stored run into one export")
	return cmd
}
