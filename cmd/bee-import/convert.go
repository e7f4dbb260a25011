package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ignite/bee-importer/internal/app"
	"github.com/ignite/bee-importer/internal/service/conversion"
)

func newConvertCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert <file.html>",
		Short: "Import one HTML file",
		Long: `Convert normalizes an HTML email, converts it to Bee JSON and stores it
as an email template.

Examples:
  bee-import convert welcome.html --org acme
  bee-import convert welcome.html --org acme --name "Welcome v2" --out welcome.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error { return runConvert(cmd, o, args) },
	}
	cmd.Flags().StringVar(&o.name, "name", "", "Template name (default: generated from the import time)")
	cmd.Flags().StringVar(&o.out, "out", "", "Also write the stored Bee JSON to this file")
	return cmd
}

func runConvert(cmd *cobra.Command, o *options, args []string) error {
	if err := o.requireOrg(); err != nil {
		return err
	}
	html, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}
	cfg, err := o.loadConfig()
	if err != nil {
		return err
	}
	a, err := app.New(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	out, err := a.Service.Convert(cmd.Context(), conversion.Input{
		OrganizationID: o.org,
		CreatedBy:      o.user,
		HTML:           string(html),
		Name:           o.name,
		Category:       o.category,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %q as template %s (subject %q)\n",
		out.Template.Name, out.Template.ID, out.Template.Subject)

	if o.out != "" {
		data, err := json.MarshalIndent(out.AdaptedJSON, "", "  ")
		if err != nil {
			return fmt.Errorf("encode bee json: %w", err)
		}
		if err := os.WriteFile(o.out, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", o.out, err)
		}
	}
	return nil
}

// nameFromPath turns "emails/welcome-back.html" into "welcome-back".
func nameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
