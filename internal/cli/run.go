package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jakenelson/ampbox/internal/launcher"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(runCmd)
	addRunFlags(runCmd.Flags())
}

var runCmd = &cobra.Command{
	Use:   "run [project-dir] [flags] [-- claude-args...]",
	Short: "Run a session (same as running ampbox without a command)",
	Args:  cobra.ArbitraryArgs,
	RunE:  runSession,
}

func runSession(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bindRunFlags(cmd)

	workDir, _ := cmd.Flags().GetString("workdir")
	projectDir, claudeArgs, err := splitArgs(args, cmd.ArgsLenAtDash(), workDir)
	if err != nil {
		return err
	}
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	opts := launcher.Options{
		ProjectDir:       projectDir,
		DataDir:          cfg.Mounts.DataDir,
		Image:            cfg.Image.Name,
		Runtime:          cfg.ForcedRuntime(),
		BuildContext:     cfg.Image.BuildContext,
		Dockerfile:       cfg.Image.Dockerfile,
		SettingsFile:     cfg.Credentials.SettingsFile,
		AWSProfileRegion: cfg.Credentials.AWSProfileRegion,
		MemoryLimit:      cfg.Container.MemoryLimit,
		Network:          cfg.Container.Network,
		DryRun:           dryRun,
		Args:             claudeArgs,
	}

	code, err := launcher.New(launcher.WithLogger(newLogger())).Run(ctx, opts)
	if err != nil {
		return err
	}
	if code != 0 {
		return &ExitError{Code: code}
	}
	return nil
}

// splitArgs separates the optional project directory from the arguments
// after "--", which are passed to Claude Code.
func splitArgs(args []string, dash int, workDir string) (string, []string, error) {
	positional, rest := args, []string(nil)
	if dash >= 0 {
		positional, rest = args[:dash], args[dash:]
	}

	switch {
	case len(positional) > 1:
		return "", nil, fmt.Errorf("expected at most one project directory, got %d (use -- to pass arguments to claude)", len(positional))
	case len(positional) == 1 && workDir != "" && positional[0] != workDir:
		return "", nil, fmt.Errorf("project directory given twice: %s and --workdir %s", positional[0], workDir)
	case len(positional) == 1:
		return positional[0], rest, nil
	}
	return workDir, rest, nil
}
