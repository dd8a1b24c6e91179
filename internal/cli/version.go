package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/jakenelson/ampbox/internal/config"
	"github.com/spf13/cobra"
)

var (
	// These are set at build time via ldflags
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the ampbox version and the image it launches",
	Long: `Print the ampbox build and the default session image.

The same binary runs on the host and as the image entrypoint, so compare the
output of "ampbox version" with "docker run --rm --entrypoint ampbox
amplifier-claude:latest version" when a rebuilt image behaves differently.`,
	Run: func(cmd *cobra.Command, args []string) {
		writeVersion(cmd.OutOrStdout())
	},
}

func writeVersion(w io.Writer) {
	fmt.Fprintf(w, "ampbox version %s\n", Version)
	fmt.Fprintf(w, "  git commit:    %s\n", GitCommit)
	fmt.Fprintf(w, "  build date:    %s\n", BuildDate)
	fmt.Fprintf(w, "  platform:      %s/%s (%s)\n", runtime.GOOS, runtime.GOARCH, runtime.Version())
	fmt.Fprintf(w, "  default image: %s\n", config.DefaultImageName)
}
