// Command sketchctl requests critiques and manages the drawing gallery from
// the command line.
package main

import (
	"fmt"
	"io"
	"os"

	"sketch-critic/internal/app"
	"sketch-critic/internal/version"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
)

// env carries what every subcommand needs.
type env struct {
	cfg    app.Config
	out    io.Writer
	logger hclog.Logger
}

func newRootCmd(getenv func(string) string, out, errOut io.Writer) *cobra.Command {
	e := &env{cfg: app.LoadConfigFrom(getenv), out: out}
	var logLevel, galleryDir string

	root := &cobra.Command{
		Use:           "sketchctl",
		Short:         "Critique drawings and manage the sketch gallery",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if logLevel != "" {
				e.cfg.LogLevel = logLevel
			}
			if galleryDir != "" {
				e.cfg.GalleryDir = galleryDir
			}
			e.logger = e.cfg.NewLogger("sketchctl", errOut)
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	root.PersistentFlags().StringVar(&galleryDir, "gallery", "", "Gallery directory (default from SKETCH_GALLERY_DIR)")

	root.AddCommand(
		newCritiqueCmd(e),
		newGalleryCmd(e),
		newThumbnailCmd(e),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintln(e.out, "sketchctl", version.String())
			},
		},
	)
	return root
}

func main() {
	if err := newRootCmd(os.Getenv, os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
