package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"paperflow-hq/paperflow/pkg/audit/retention"
	"paperflow-hq/paperflow/pkg/cli"
)

var auditFlags struct {
	documentID string
	limit      int
	format     string
	olderThan  int
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect and prune the audit log",
	Long: `Inspect and prune the audit log.

Subcommands:
  list  - List audit events for a document, newest first
  count - Show the total number of stored events
  prune - Delete events older than the retention window

Examples:
  # Show a document's processing history
  paperflow audit list --document 7d3f... --limit 20

  # Delete events older than 30 days
  paperflow audit prune --older-than 30`,
}

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List audit events for a document",
	RunE:  listAuditEvents,
}

var auditCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Show the total number of stored events",
	RunE:  countAuditEvents,
}

var auditPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete events older than the retention window",
	Long: `Delete events older than the retention window.

Without --older-than, the configured audit.retention.days applies.`,
	RunE: pruneAuditEvents,
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditListCmd, auditCountCmd, auditPruneCmd)

	auditCmd.PersistentFlags().StringVarP(&auditFlags.format, "format", "f", "text", "output format: text, json")
	auditListCmd.Flags().StringVarP(&auditFlags.documentID, "document", "d", "", "document ID (required)")
	auditListCmd.Flags().IntVar(&auditFlags.limit, "limit", 50, "maximum events to show")
	auditPruneCmd.Flags().IntVar(&auditFlags.olderThan, "older-than", 0, "override retention window in days")
	_ = auditListCmd.MarkFlagRequired("document")
}

func listAuditEvents(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	app, err := newApp(ctx, cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	defer app.Close()

	if app.auditStorage == nil {
		return cli.NewCommandError("audit list", fmt.Errorf("auditing is disabled in the configuration"))
	}

	events, err := app.auditStorage.ListByDocument(ctx, auditFlags.documentID, auditFlags.limit)
	if err != nil {
		return cli.NewCommandError("audit list", err)
	}

	if auditFlags.format == "json" {
		return cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, events)
	}

	if len(events) == 0 {
		fmt.Println("No audit events found")
		return nil
	}
	for _, ev := range events {
		fmt.Printf("%s  [%s]  %s\n", ev.CreatedAt.Format(time.RFC3339), ev.Category, ev.Title)
		for k, v := range ev.Details {
			fmt.Printf("    %s: %v\n", k, v)
		}
	}
	return nil
}

func countAuditEvents(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	app, err := newApp(ctx, cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	defer app.Close()

	if app.auditStorage == nil {
		return cli.NewCommandError("audit count", fmt.Errorf("auditing is disabled in the configuration"))
	}

	n, err := app.auditStorage.Count(ctx)
	if err != nil {
		return cli.NewCommandError("audit count", err)
	}
	fmt.Printf("%d audit events stored\n", n)
	return nil
}

func pruneAuditEvents(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	app, err := newApp(ctx, cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	defer app.Close()

	if app.auditStorage == nil {
		return cli.NewCommandError("audit prune", fmt.Errorf("auditing is disabled in the configuration"))
	}

	days := auditFlags.olderThan
	if days <= 0 {
		days = app.cfg.Audit.Retention.Days
	}

	pruner := retention.NewPruner(app.auditStorage, &retention.Config{RetentionDays: days})
	deleted, err := pruner.Prune(ctx)
	if err != nil {
		return cli.NewCommandError("audit prune", err)
	}
	fmt.Printf("✓ Deleted %d events older than %d days\n", deleted, days)
	return nil
}
