package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"paperflow-hq/paperflow/pkg/cli"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "paperflow",
	Short: "Paperflow - document intake automation",
	Long: `Paperflow automates document intake: extracted document metadata is
matched against user-defined policies, turned into named variables, and run
through an ordered chain of actions that rename, file, upload, and announce
the document.

It provides:
  - Versioned policy and field-schema storage (memory, SQLite, PostgreSQL)
  - A cached policy registry with file-based import and hot reload
  - A deterministic action pipeline with a structured per-run trace
  - Remote storage upload (Google Cloud Storage)
  - An asynchronous audit trail with scheduled retention`,
	Version: Version,
}

// Execute runs the root command and exits with a code reflecting the error
// class (see cli.ExitCode).
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
