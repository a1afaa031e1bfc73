// Package main is the entrypoint for the parcel tracking API.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	serve := serveCmd()

	root := &cobra.Command{
		Use:           "parceltrack",
		Short:         "Parcel tracking API server",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		// Bare invocation serves.
		RunE: serve.RunE,
	}

	root.AddCommand(serve)
	root.AddCommand(migrateCmd())

	return root
}
