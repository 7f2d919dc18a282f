// Command gtkctl runs imports and maintenance tasks against the database.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "gtkctl: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gtkctl",
		Short: "SIM Talenta GTK maintenance CLI",
		Long: `gtkctl imports GTK and school spreadsheets, migrates the schema and
seeds the super admin account using the same configuration as the API.`,
		SilenceUsage: true,
	}
	cmd.AddCommand(
		newImportCmd(),
		newMigrateCmd(),
		newSeedAdminCmd(),
	)
	return cmd
}
