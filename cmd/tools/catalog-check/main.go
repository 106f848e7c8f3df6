// cmd/tools/catalog-check/main.go
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"business-directory/internal/common/config"
	"business-directory/internal/entitlement"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "catalog-check",
		Short: "Validate and inspect the plan catalog",
		Long: `catalog-check runs the same integrity check the directory service runs
at startup and prints the capabilities each plan enables.

The catalog comes from a JSON file (--file), the plans section of a service
config file (--config), or the built-in default when neither is given.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().String("file", "", "JSON catalog file")
	root.PersistentFlags().String("config", "", "service config YAML whose plans section is checked")

	root.AddCommand(validateCmd())
	root.AddCommand(showCmd())
	root.AddCommand(checkCmd())
	return root
}

// loadCatalog resolves the catalog named by the persistent flags. The
// returned source describes where it came from.
func loadCatalog(cmd *cobra.Command) (entitlement.Catalog, string, error) {
	file, _ := cmd.Flags().GetString("file")
	cfgPath, _ := cmd.Flags().GetString("config")

	switch {
	case file != "" && cfgPath != "":
		return nil, "", fmt.Errorf("--file and --config are mutually exclusive")
	case file != "":
		c, err := entitlement.LoadCatalogFile(file)
		return c, file, err
	case cfgPath != "":
		cfg, err := config.LoadFromFile(cfgPath)
		if err != nil {
			return nil, "", err
		}
		if len(cfg.Plans) == 0 {
			return entitlement.DefaultCatalog(), cfgPath + " (no plans section, default catalog)", nil
		}
		c, err := entitlement.CatalogFromConfig(cfg.Plans)
		return c, cfgPath, err
	default:
		return entitlement.DefaultCatalog(), "built-in default", nil
	}
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Run the catalog integrity check",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, source, err := loadCatalog(cmd)
			if err != nil {
				return err
			}
			if _, err := entitlement.NewResolver(catalog); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "catalog OK (%s): %d plans\n", source, len(catalog))
			return nil
		},
	}
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [plan...]",
		Short: "Print the capabilities per plan in display order",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, _, err := loadCatalog(cmd)
			if err != nil {
				return err
			}
			resolver, err := entitlement.NewResolver(catalog)
			if err != nil {
				return err
			}

			plans := args
			if len(plans) == 0 {
				for _, p := range entitlement.Plans {
					plans = append(plans, string(p))
				}
			}
			printPlans(cmd.OutOrStdout(), resolver, plans)
			return nil
		},
	}
}

func printPlans(w io.Writer, resolver *entitlement.Resolver, plans []string) {
	for _, plan := range plans {
		caps := resolver.CapabilitiesOf(plan)
		if len(caps) == 0 {
			fmt.Fprintf(w, "%s: (unknown plan, no capabilities)\n", plan)
			continue
		}
		names := make([]string, len(caps))
		for i, c := range caps {
			names[i] = string(c)
		}
		fmt.Fprintf(w, "%s: %s\n", plan, strings.Join(names, ", "))
	}
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <plan> <capability>",
		Short: "Report whether a plan grants a capability",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, _, err := loadCatalog(cmd)
			if err != nil {
				return err
			}
			resolver, err := entitlement.NewResolver(catalog)
			if err != nil {
				return err
			}
			granted := resolver.HasCapability(args[0], entitlement.Capability(args[1]))
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %t\n", args[0], args[1], granted)
			return nil
		},
	}
}
