package cmd

import (
	"github.com/spf13/cobra"
)

var cfgFile string

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "benchtab",
		Short: "Microbenchmark harness with normalized tabular export",
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "benchtab.yaml", "config file path")
	root.AddCommand(newRunCmd())
	root.AddCommand(newExportCmd())
	root.AddCommand(newListCmd())
	return root
}
