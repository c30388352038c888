package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	mjbuild "github.com/contriboss/mujoco-build-go"
)

const toolVersion = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "mjbuild %s (packages %s %s)\n", toolVersion, mjbuild.PackageName, mjbuild.Version)
	},
}
