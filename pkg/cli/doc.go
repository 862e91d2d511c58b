/*
Package cli provides the shared command-line plumbing for the paperflow
command: output formatters, progress reporting, signal handling, and the
error-to-exit-code mapping.

Output formatting supports text, JSON and CSV:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, results); err != nil {
		return err
	}

Batch commands report progress while fanning out over documents:

	progress := cli.NewProgressReporter(os.Stderr)
	progress.Start(int64(len(files)))
	// workers call progress.Update as documents finish
	progress.Finish()

Exit codes follow the error taxonomy: validation failures, missing
resources and missing authentication each map to a distinct code via
cli.ExitCode, so scripts can branch without parsing error text.
*/
package cli
