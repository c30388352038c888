package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	mjbuild "github.com/contriboss/mujoco-build-go"
)

var cleanOpts struct {
	buildTemp string
}

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the CMake binary directory",
	Long: `Remove the CMake binary directory left behind by build.

The staged package tree under --build-lib is kept. A missing directory is
not an error.`,
	Args: cobra.NoArgs,
	RunE: runClean,
}

func init() {
	cleanCmd.Flags().StringVar(&cleanOpts.buildTemp, "build-temp", filepath.Join("build", "temp"), "CMake binary directory")
}

func runClean(cmd *cobra.Command, args []string) error {
	var builder mjbuild.Builder = mjbuild.NewCmakeBuilder("")

	log.V(1).Info("cleaning build tree", "builder", builder.Name(), "dir", cleanOpts.buildTemp)
	if err := builder.Clean(cmd.Context(), &mjbuild.BuildConfig{BuildTemp: cleanOpts.buildTemp}); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed %s\n", cleanOpts.buildTemp)
	return nil
}
