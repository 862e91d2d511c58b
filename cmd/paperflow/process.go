package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"paperflow-hq/paperflow/pkg/cli"
	"paperflow-hq/paperflow/pkg/pipeline"
	"paperflow-hq/paperflow/pkg/policy"
)

var processFlags struct {
	userID      string
	policyID    string
	dataFile    string
	concurrency int
	format      string
	progress    bool
}

var processCmd = &cobra.Command{
	Use:   "process <file>...",
	Short: "Run policy actions against documents",
	Long: `Run a policy's action pipeline against one or more documents.

Each file is processed independently: variables are derived from the
extracted data, then the policy's actions run in declaration order,
halting at the first failure. Renames performed before a failure are
kept, and every executed action is written to the audit log.

The extracted data comes from a JSON file (--data). With a single
document the file holds one object; with multiple documents it holds an
object keyed by file basename.

Examples:
  # Process one document with an explicit policy
  paperflow process invoice.pdf --user alice --policy inv-filing --data extracted.json

  # Process a batch with the highest-priority enabled policy
  paperflow process inbox/*.pdf --user alice --data batch.json --concurrency 8

  # Machine-readable results
  paperflow process invoice.pdf --user alice --data extracted.json --format json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringVarP(&processFlags.userID, "user", "u", "", "owning user ID (required)")
	processCmd.Flags().StringVar(&processFlags.policyID, "policy", "", "policy ID to apply (default: highest-priority enabled policy)")
	processCmd.Flags().StringVarP(&processFlags.dataFile, "data", "d", "", "JSON file with extracted document data (required)")
	processCmd.Flags().IntVar(&processFlags.concurrency, "concurrency", 4, "maximum documents processed in parallel")
	processCmd.Flags().StringVarP(&processFlags.format, "format", "f", "text", "output format (text, json)")
	processCmd.Flags().BoolVar(&processFlags.progress, "progress", false, "show a progress bar")
	_ = processCmd.MarkFlagRequired("user")
	_ = processCmd.MarkFlagRequired("data")
}

// processResult is one document's outcome in the command output.
type processResult struct {
	Document string              `json:"document"`
	PolicyID string              `json:"policy_id"`
	Result   *pipeline.RunResult `json:"result"`
	Error    string              `json:"error,omitempty"`
}

func runProcess(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := newApp(ctx, cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	defer app.Close()

	data, err := loadExtractedData(processFlags.dataFile, args)
	if err != nil {
		return cli.NewCommandError("process", err)
	}

	pol, err := selectPolicy(ctx, app, processFlags.userID, processFlags.policyID)
	if err != nil {
		return cli.NewCommandError("process", err)
	}

	var reporter cli.ProgressReporter
	var done atomic.Int64
	if processFlags.progress {
		reporter = cli.NewProgressReporter(os.Stderr)
		reporter.Start(int64(len(args)))
	}

	results := make([]processResult, len(args))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(processFlags.concurrency)

	for i, file := range args {
		g.Go(func() error {
			results[i] = processOne(gctx, app, pol, file, data[filepath.Base(file)])
			if reporter != nil {
				reporter.Update(done.Add(1))
			}
			return nil
		})
	}
	_ = g.Wait()

	if reporter != nil {
		reporter.Finish()
	}
	return printResults(results)
}

func processOne(ctx context.Context, app *app, pol *policy.Policy, file string, data map[string]any) processResult {
	pr := processResult{Document: file, PolicyID: pol.PolicyID}

	abs, err := filepath.Abs(file)
	if err == nil {
		file = abs
	}
	if _, err := os.Stat(file); err != nil {
		pr.Error = fmt.Sprintf("stat document: %v", err)
		return pr
	}

	pr.Result = app.runner.Run(ctx, &pipeline.RunRequest{
		Policy:     pol,
		Data:       data,
		File:       pipeline.FileState{Path: file, Name: filepath.Base(file)},
		UserID:     processFlags.userID,
		DocumentID: uuid.NewString(),
		Store:      app.store,
	})
	if pr.Result.Err != nil {
		pr.Error = pr.Result.Err.Error()
	}
	return pr
}

// selectPolicy resolves the policy to apply: the named one when --policy is
// given, otherwise the highest-priority enabled policy (Load already sorts).
func selectPolicy(ctx context.Context, app *app, userID, policyID string) (*policy.Policy, error) {
	policies := app.registry.Load(ctx, userID, false)
	if policyID == "" {
		if len(policies) == 0 {
			return nil, fmt.Errorf("no enabled policies for user %q", userID)
		}
		return policies[0], nil
	}
	for _, p := range policies {
		if p.PolicyID == policyID {
			return p, nil
		}
	}
	return nil, fmt.Errorf("policy %q not found for user %q", policyID, userID)
}

// loadExtractedData reads the --data file. A single-document invocation may
// pass a bare object; batches pass an object keyed by file basename.
func loadExtractedData(path string, files []string) (map[string]map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read data file: %w", err)
	}

	if len(files) > 1 {
		var keyed map[string]map[string]any
		if err := json.Unmarshal(raw, &keyed); err != nil {
			return nil, fmt.Errorf("parse data file (expected object keyed by file basename): %w", err)
		}
		return keyed, nil
	}

	var flat map[string]any
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, fmt.Errorf("parse data file: %w", err)
	}
	return map[string]map[string]any{filepath.Base(files[0]): flat}, nil
}

func printResults(results []processResult) error {
	if processFlags.format == "json" {
		return cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, results)
	}

	failed := 0
	for _, r := range results {
		switch {
		case r.Result != nil && r.Result.Success:
			fmt.Printf("✓ %s → %s\n", r.Document, r.Result.File.Name)
			for _, line := range r.Result.Log {
				fmt.Printf("    %s\n", line)
			}
		default:
			failed++
			fmt.Printf("✗ %s: %s\n", r.Document, r.Error)
			if r.Result != nil && r.Result.FailedKind != "" {
				fmt.Printf("    failed action: %s\n", r.Result.FailedKind)
			}
		}
	}
	fmt.Printf("\n%d processed, %d failed\n", len(results), failed)
	if failed > 0 {
		return cli.NewCommandError("process", fmt.Errorf("%d of %d documents failed", failed, len(results)))
	}
	return nil
}
