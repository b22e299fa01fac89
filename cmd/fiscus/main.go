package main

import (
	"os"

	"github.com/spf13/cobra"

	"fiscus/internal/interfaces/cli/migrate"
	"fiscus/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "fiscus",
		Short: "Fiscus - authorization and entitlement engine",
		Long:  `Fiscus is the authorization and entitlement engine for multi-tenant expense workspaces: roles, per-account permission overrides, plan entitlements, and member provisioning.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
