// Command bee-import converts HTML email files into stored Bee templates.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ignite/bee-importer/internal/config"
)

// options holds the flag values of one command tree.
type options struct {
	configPath string
	org        string
	user       string
	name       string
	category   string
	workers    int
	out        string
}

// newRootCmd builds a fresh command tree, so every invocation starts from
// default flag values.
func newRootCmd() *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:   "bee-import",
		Short: "Import HTML email templates into the Bee editor format",
		Long: `bee-import sends HTML email documents through the Beefree HTML importer
and stores the resulting Bee JSON as email templates.

Usage:
  bee-import convert <file.html> --org <id> [flags]
  bee-import batch <file.html>... --org <id> [flags]
  bee-import ping`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&o.configPath, "config", "config/config.yaml", "Path to the YAML config file")
	root.PersistentFlags().StringVar(&o.org, "org", "", "Organization that owns the imported templates")
	root.PersistentFlags().StringVar(&o.user, "user", "", "User recorded as the template author")
	root.PersistentFlags().StringVar(&o.category, "category", "", "Template category (default \"Other\")")

	root.AddCommand(newConvertCmd(o), newBatchCmd(o), newPingCmd(o))
	return root
}

func (o *options) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFromEnv(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if o.workers > 0 {
		cfg.Conversion.Workers = o.workers
	}
	return cfg, nil
}

func (o *options) requireOrg() error {
	if o.org == "" {
		return fmt.Errorf("--org is required")
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
