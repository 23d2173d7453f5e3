package cmd

import (
	"fmt"
	"strings"

	"github.com/ahoffer/benchtab/internal/bench"
	"github.com/ahoffer/benchtab/internal/config"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured benchmarks and available workloads",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			fmt.Println("Benchmarks:")
			for _, b := range cfg.Benchmarks {
				fmt.Printf("  - %s (workload: %s, mode: %s)\n", b.Name, b.Workload, b.Mode)
				for key, values := range b.Params {
					fmt.Printf("      %s = %s\n", key, strings.Join(values, ", "))
				}
			}
			fmt.Println("\nWorkloads:")
			for _, name := range bench.Names() {
				fmt.Printf("  - %s\n", name)
			}
			return nil
		},
	}
}
