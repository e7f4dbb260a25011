package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/ignite/bee-importer/internal/beefree"
)

func newPingCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check credentials and connectivity to the Beefree API",
		Args:  cobra.NoArgs,
		RunE:  func(cmd *cobra.Command, _ []string) error { return runPing(cmd, o) },
	}
}

func runPing(cmd *cobra.Command, o *options) error {
	cfg, err := o.loadConfig()
	if err != nil {
		return err
	}
	client, err := beefree.NewClient(cfg.Beefree, &http.Client{})
	if err != nil {
		return err
	}

	st := client.TestConnection(cmd.Context())
	if st.Status != "connected" {
		return fmt.Errorf("%s (%s)", st.Message, st.ErrorType)
	}
	rt := 0.0
	if st.ResponseTimeMs != nil {
		rt = *st.ResponseTimeMs
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s in %.0fms\n", st.Message, rt)
	return nil
}
