package cli

import (
	"context"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/contriboss/mujoco-build-go/internal/logger"
)

var (
	logOptions logger.Options
	log        = logr.Discard()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "mjbuild",
	Short: "Package the MuJoCo Python bindings",
	Long: `mjbuild - MuJoCo Python bindings packager

Locates a prebuilt MuJoCo library (MUJOCO_PATH), builds the extension
modules against it with CMake and stages modules, shared libraries and
headers into an installable package tree.`,
	Version:       toolVersion,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logger.NewLogger(logOptions)
		if err != nil {
			return err
		}
		log = l
		return nil
	},
}

// Execute executes the root command
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	logOptions.BindFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(tokenizeCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(versionCmd)
}
