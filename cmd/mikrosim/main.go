package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime/debug"
	"time"

	"github.com/spf13/cobra"

	"github.com/mikrosim/taxben/internal/calculation"
	"github.com/mikrosim/taxben/internal/config"
	"github.com/mikrosim/taxben/internal/output"
	"github.com/mikrosim/taxben/internal/params"
)

// simpleCLILogger implements calculation.Logger using the standard log package.
type simpleCLILogger struct{}

func (simpleCLILogger) Debugf(format string, args ...any) { log.Printf("DEBUG: "+format, args...) }
func (simpleCLILogger) Infof(format string, args ...any)  { log.Printf("INFO: "+format, args...) }
func (simpleCLILogger) Warnf(format string, args ...any)  { log.Printf("WARN: "+format, args...) }
func (simpleCLILogger) Errorf(format string, args ...any) { log.Printf("ERROR: "+format, args...) }

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "mikrosim",
	Short: "Tax-transfer microsimulation engine",
	Long:  "Evaluates pension claims, retirement-savings deductions and the basic subsistence benefit for a simulated population under a dated policy parameter table.",
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(os.Stdout, "mikrosim %s (commit %s, built %s)\n", version, commit, date)
			if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
				fmt.Fprintln(os.Stdout, bi.Main.Path)
			}
		},
	}
}

func runCmd() *cobra.Command {
	var (
		paramsFile string
		dateFlag   string
		format     string
		outFile    string
		workers    int
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "run [population-file]",
		Short: "Evaluate a population under the policy in force at a date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			refDate, err := time.Parse("2006-01-02", dateFlag)
			if err != nil {
				return fmt.Errorf("invalid --date %q: %w", dateFlag, err)
			}

			pop, err := config.NewInputParser().LoadPopulation(args[0])
			if err != nil {
				return err
			}
			table, err := params.LoadFile(paramsFile)
			if err != nil {
				return err
			}

			engine, err := calculation.NewEngine(table, refDate)
			if err != nil {
				return err
			}
			if verbose {
				engine.SetLogger(simpleCLILogger{})
			}
			engine.SetWorkers(workers)

			results, err := engine.Run(context.Background(), pop)
			if err != nil {
				return err
			}

			formatter, err := output.ForName(format)
			if err != nil {
				return err
			}
			data, err := formatter.Format(results)
			if err != nil {
				return fmt.Errorf("failed to format results: %w", err)
			}

			if outFile == "" {
				_, err = os.Stdout.Write(data)
				return err
			}
			if err := os.WriteFile(outFile, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", outFile, err)
			}
			fmt.Fprintf(os.Stderr, "wrote %s output to %s\n", formatter.Name(), outFile)
			return nil
		},
	}

	cmd.Flags().StringVarP(&paramsFile, "params", "p", "parameters.yaml", "policy parameter table (YAML)")
	cmd.Flags().StringVarP(&dateFlag, "date", "d", time.Now().Format("2006-01-02"), "policy reference date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&format, "format", "f", "csv", "output format: csv or json")
	cmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")
	cmd.Flags().IntVar(&workers, "workers", 0, "worker count for per-record phases (0 = one per CPU)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log engine progress to stderr")
	return cmd
}

func validateCmd() *cobra.Command {
	var paramsFile string

	cmd := &cobra.Command{
		Use:   "validate [population-file]",
		Short: "Validate a population file and parameter table without evaluating",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pop, err := config.NewInputParser().LoadPopulation(args[0])
			if err != nil {
				return err
			}
			table, err := params.LoadFile(paramsFile)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "population OK: %d persons, %d tax units, %d households\n",
				len(pop.Persons), len(pop.TaxUnits), len(pop.Households))
			fmt.Fprintf(os.Stdout, "parameter table OK: %d dated sets\n", len(table.Sets))
			return nil
		},
	}

	cmd.Flags().StringVarP(&paramsFile, "params", "p", "parameters.yaml", "policy parameter table (YAML)")
	return cmd
}

func main() {
	log.SetFlags(0)
	rootCmd.AddCommand(runCmd(), validateCmd(), versionCmd())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
