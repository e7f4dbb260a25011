package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ignite/bee-importer/internal/app"
	"github.com/ignite/bee-importer/internal/service/conversion"
)

func newBatchCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <file.html>...",
		Short: "Import many HTML files",
		Long: `Batch imports every file independently. Each template is named after its
file. A failed file is reported and does not stop the others.

Examples:
  bee-import batch emails/*.html --org acme --workers 8`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error { return runBatch(cmd, o, args) },
	}
	cmd.Flags().IntVar(&o.workers, "workers", 0, "Concurrent conversions (default from config)")
	return cmd
}

func runBatch(cmd *cobra.Command, o *options, args []string) error {
	if err := o.requireOrg(); err != nil {
		return err
	}
	items := make([]conversion.BatchItem, 0, len(args))
	for _, path := range args {
		html, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		items = append(items, conversion.BatchItem{
			HTML:     string(html),
			Name:     nameFromPath(path),
			Category: o.category,
		})
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

	out, err := a.Service.BatchConvert(cmd.Context(), o.org, o.user, items)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	for _, s := range out.Successful {
		fmt.Fprintf(w, "  OK    %s -> %s\n", args[s.Index], s.Outcome.Template.ID)
	}
	for _, f := range out.Failed {
		fmt.Fprintf(w, "  FAIL  %s: %s\n", args[f.Index], f.Error)
	}
	fmt.Fprintf(w, "Done: %d/%d imported (%.1f%%)\n", len(out.Successful), out.Total, out.SuccessRate)

	if len(out.Failed) > 0 {
		return fmt.Errorf("%d of %d templates failed", len(out.Failed), out.Total)
	}
	return nil
}
