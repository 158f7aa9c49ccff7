package main

import (
	"fmt"

	"github.com/WIZARDISHUNGRY/eye-overlay/internal/assets"
	"github.com/WIZARDISHUNGRY/eye-overlay/internal/config"
	"github.com/WIZARDISHUNGRY/eye-overlay/internal/stream"
	"github.com/spf13/cobra"
)

func newFetchCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch-model",
		Short: "Download and extract the landmark model unless it is already present",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := assets.NewFetcher()
			f.URL = cfg.ModelURL
			path, err := f.Fetch(cmd.Context(), cfg.ModelDir)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func newDumpFSMCmd() *cobra.Command {
	return &cobra.Command{
		Use:    "dump-fsm",
		Short:  "Write graphviz source of the stream lifecycle",
		Hidden: true,
		Args:   cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), stream.Visualize())
		},
	}
}
