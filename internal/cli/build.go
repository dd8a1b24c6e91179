package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/jakenelson/ampbox/internal/config"
	"github.com/jakenelson/ampbox/internal/container"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringP("file", "f", "", "Dockerfile name or path (default: Dockerfile)")
	buildCmd.Flags().StringP("tag", "t", "", "image tag (default: amplifier-claude:latest)")
	buildCmd.Flags().String("context", "", "build context directory")
	buildCmd.Flags().Bool("no-cache", false, "do not use cache when building")
	buildCmd.Flags().String("platform", "", "target platform (e.g., linux/amd64)")
	buildCmd.Flags().String("runtime", "", "container runtime: docker, podman (default: auto-detect)")
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the ampbox container image",
	Long: `Build the ampbox image from docker/Dockerfile. The build context is looked
up next to the ampbox executable, then in the current directory, unless
--context is given. Running a session builds the image automatically when it is
missing; use this command to rebuild it.

Examples:
  ampbox build                          # Build with default settings
  ampbox build --no-cache               # Rebuild from scratch
  ampbox build -t amplifier-claude:dev  # Custom tag
  ampbox build -f ./docker/Dockerfile   # Use a specific Dockerfile`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		viper.BindPFlag("runtime", cmd.Flags().Lookup("runtime"))
		cfg = config.LoadConfig()

		dockerfile, _ := cmd.Flags().GetString("file")
		tag, _ := cmd.Flags().GetString("tag")
		contextDir, _ := cmd.Flags().GetString("context")
		noCache, _ := cmd.Flags().GetBool("no-cache")
		platform, _ := cmd.Flags().GetString("platform")

		// Use config values if flags not provided
		if tag == "" {
			tag = cfg.Image.Name
		}
		if contextDir == "" {
			contextDir = cfg.Image.BuildContext
		}
		if dockerfile == "" {
			dockerfile = cfg.Image.Dockerfile
		}

		// A Dockerfile path implies its context when none is given
		if filepath.Base(dockerfile) != dockerfile && contextDir == "" {
			contextDir, dockerfile = container.SplitDockerfilePath(dockerfile)
		}

		src := container.BuildSource{
			Explicit:   contextDir,
			Dockerfile: dockerfile,
			NoCache:    noCache,
		}
		if execPath, err := os.Executable(); err == nil {
			src.LauncherDir = filepath.Dir(execPath)
		}
		src.WorkDir, _ = os.Getwd()

		resolved, err := container.LocateBuildContext(src)
		if err != nil {
			return err
		}

		logger := newLogger()
		engine, err := container.Detect(ctx, container.EngineType(cfg.ForcedRuntime()), container.WithDetectLogger(logger))
		if err != nil {
			return err
		}
		if c, ok := engine.(interface{ Close() error }); ok {
			defer c.Close()
		}

		opts := container.BuildOptions{
			ContextDir: resolved.Dir,
			Dockerfile: resolved.Dockerfile,
			Tag:        tag,
			NoCache:    noCache,
			Platform:   platform,
		}

		fmt.Printf("Building image %s from %s with %s...\n", tag, resolved.Path(), engine.Name())
		if err := engine.Build(ctx, opts); err != nil {
			return err
		}

		fmt.Printf("Successfully built %s\n", tag)
		return nil
	},
}
