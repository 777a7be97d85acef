// Package cli provides CLI commands for the tkitrace application.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/example/tkitrace/internal/ctxutil"
	"github.com/example/tkitrace/internal/wire"
)

// NewContext creates a context.Background() with the application logger embedded.
// CLI commands should use this instead of context.Background() directly.
func NewContext(cmd *cobra.Command) context.Context {
	if cmd == nil {
		return ctxutil.WithLogger(context.Background(), wire.Logger())
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return ctxutil.WithLogger(ctx, wire.Logger().WithField("command", cmd.CommandPath()))
}

// addRefreshFlag registers the shared --refresh flag.
func addRefreshFlag(cmd *cobra.Command) {
	cmd.Flags().Bool("refresh", false, "Bypass the snapshot cache and fetch the source again")
}

func refreshFlag(cmd *cobra.Command) bool {
	refresh, _ := cmd.Flags().GetBool("refresh")
	return refresh
}
