package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jakenelson/ampbox/internal/entrypoint"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(entrypointCmd)
}

var entrypointCmd = &cobra.Command{
	Use:   "entrypoint [claude-args...]",
	Short: "Internal command: container entrypoint (not for direct use)",
	Long: `Bootstrap run inside the ampbox container. It checks that the project is
mounted at $TARGET_DIR, writes ~/.claude.json for the forwarded credentials and
replaces itself with claude.

Do not run this command directly - it is the image's ENTRYPOINT.`,
	Hidden:             true,
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if len(args) > 0 && args[0] == "--" {
			args = args[1:]
		}

		ep := entrypoint.New(entrypoint.WithLogger(newLogger()))
		return ep.Run(ctx, args)
	},
}
