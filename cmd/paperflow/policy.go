package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"paperflow-hq/paperflow/pkg/cli"
	"paperflow-hq/paperflow/pkg/policy"
	"paperflow-hq/paperflow/pkg/policy/importer"
)

var policyFlags struct {
	userID string
	format string
	all    bool
}

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Manage intake policies",
	Long: `Manage intake policies in the registry.

Subcommands:
  list     - List a user's policies in priority order
  validate - Validate policy YAML files without saving
  import   - Import policy YAML files into the registry
  enable   - Enable a policy
  disable  - Disable a policy
  delete   - Delete a policy

Examples:
  # List alice's enabled policies
  paperflow policy list --user alice

  # Validate a policy file
  paperflow policy validate policies/invoices.yaml

  # Import a directory of policies
  paperflow policy import policies/ --user alice

  # Disable a policy
  paperflow policy disable inv-filing --user alice`,
}

var policyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a user's policies",
	Long: `List a user's policies in priority order (highest first).

Only enabled policies are listed by default; --all includes disabled ones.

Examples:
  paperflow policy list --user alice
  paperflow policy list --user alice --all --format json`,
	RunE: listPolicies,
}

var policyValidateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Validate policy YAML files",
	Long: `Validate policy YAML files without saving them.

Each file may hold multiple policy documents separated by "---". Every
document is normalized and checked against the policy schema.

Examples:
  paperflow policy validate policies/invoices.yaml
  paperflow policy validate policies/*.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: validatePolicies,
}

var policyImportCmd = &cobra.Command{
	Use:   "import <path>",
	Short: "Import policy YAML files into the registry",
	Long: `Import policy YAML files into the registry.

Path may be a single file or a directory; directories are walked
recursively for .yaml/.yml files. Policies with the same ID are
upserted as a new version.

Examples:
  paperflow policy import policies/ --user alice
  paperflow policy import invoices.yaml --user alice`,
	Args: cobra.ExactArgs(1),
	RunE: importPolicies,
}

var policyEnableCmd = &cobra.Command{
	Use:   "enable <policy-id>",
	Short: "Enable a policy",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setPolicyEnabled(args[0], true)
	},
}

var policyDisableCmd = &cobra.Command{
	Use:   "disable <policy-id>",
	Short: "Disable a policy",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setPolicyEnabled(args[0], false)
	},
}

var policyDeleteCmd = &cobra.Command{
	Use:   "delete <policy-id>",
	Short: "Delete a policy",
	Args:  cobra.ExactArgs(1),
	RunE:  deletePolicy,
}

func init() {
	rootCmd.AddCommand(policyCmd)
	policyCmd.AddCommand(policyListCmd, policyValidateCmd, policyImportCmd,
		policyEnableCmd, policyDisableCmd, policyDeleteCmd)

	policyCmd.PersistentFlags().StringVarP(&policyFlags.userID, "user", "u", "", "owning user ID")
	policyCmd.PersistentFlags().StringVarP(&policyFlags.format, "format", "f", "text", "output format: text, json")
	policyListCmd.Flags().BoolVar(&policyFlags.all, "all", false, "include disabled policies")
}

func listPolicies(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	app, err := newApp(ctx, cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	defer app.Close()

	var policies []*policy.Policy
	if policyFlags.all {
		policies, err = app.store.ListPolicies(ctx, policyFlags.userID)
		if err != nil {
			return cli.NewCommandError("policy list", err)
		}
	} else {
		policies = app.registry.Load(ctx, policyFlags.userID, true)
	}

	if policyFlags.format == "json" {
		return cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, policies)
	}

	if len(policies) == 0 {
		fmt.Println("No policies found")
		return nil
	}
	for _, p := range policies {
		state := "enabled"
		if !p.Metadata.Enabled {
			state = "disabled"
		}
		fmt.Printf("%-24s  priority=%-4d  actions=%-2d  %-8s  %s\n",
			p.PolicyID, p.Metadata.Priority, len(p.Spec.Actions), state, p.Metadata.Name)
	}
	return nil
}

func validatePolicies(cmd *cobra.Command, args []string) error {
	failed := 0
	for _, path := range args {
		policies, err := importer.LoadFile(path)
		if err != nil {
			failed++
			fmt.Printf("✗ %s: %v\n", path, err)
			continue
		}
		fmt.Printf("✓ %s (%d policies)\n", path, len(policies))
	}
	if failed > 0 {
		return cli.NewCommandError("policy validate", fmt.Errorf("%d of %d files invalid", failed, len(args)))
	}
	return nil
}

func importPolicies(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	app, err := newApp(ctx, cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	defer app.Close()

	userID := policyFlags.userID
	if userID == "" {
		userID = app.cfg.Registry.ImportUserID
	}

	path := args[0]
	info, err := os.Stat(path)
	if err != nil {
		return cli.NewCommandError("policy import", err)
	}

	var policies []*policy.Policy
	if info.IsDir() {
		policies, err = importer.LoadDir(path)
	} else {
		policies, err = importer.LoadFile(path)
	}
	if err != nil {
		return cli.NewCommandError("policy import", err)
	}

	saved := 0
	for _, p := range policies {
		if _, err := app.registry.Save(ctx, userID, p); err != nil {
			fmt.Printf("✗ %s: %v\n", p.PolicyID, err)
			continue
		}
		saved++
	}
	fmt.Printf("✓ Imported %d of %d policies for user %s\n", saved, len(policies), userID)
	if saved < len(policies) {
		return cli.NewCommandError("policy import", fmt.Errorf("%d policies failed", len(policies)-saved))
	}
	return nil
}

func setPolicyEnabled(policyID string, enabled bool) error {
	ctx := context.Background()
	app, err := newApp(ctx, cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	defer app.Close()

	patch := &policy.MetadataPatch{Enabled: &enabled}
	if err := app.registry.Patch(ctx, policyFlags.userID, policyID, patch); err != nil {
		return cli.NewCommandError("policy", err)
	}
	state := "enabled"
	if !enabled {
		state = "disabled"
	}
	fmt.Printf("✓ Policy %s %s\n", policyID, state)
	return nil
}

func deletePolicy(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	app, err := newApp(ctx, cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	defer app.Close()

	deleted, err := app.registry.Delete(ctx, policyFlags.userID, args[0])
	if err != nil {
		return cli.NewCommandError("policy delete", err)
	}
	if !deleted {
		fmt.Printf("Policy %s not found, nothing deleted\n", args[0])
		return nil
	}
	fmt.Printf("✓ Policy %s deleted\n", args[0])
	return nil
}
