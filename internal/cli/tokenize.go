package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mjbuild "github.com/contriboss/mujoco-build-go"
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [STRING]",
	Short: "Show how a CMake argument string is split",
	Long: `Split STRING (default: $MUJOCO_CMAKE_ARGS) the way the build command
does and print one quoted argument per line.

Examples:
  mjbuild tokenize '--flag1 --flag2="a b" -Dfoo='"'"'bar baz'"'"
  MUJOCO_CMAKE_ARGS='-DX="1 2"' mjbuild tokenize`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTokenize,
}

func runTokenize(cmd *cobra.Command, args []string) error {
	raw := os.Getenv(mjbuild.EnvCMakeArgs)
	if len(args) == 1 {
		raw = args[0]
	}

	parsed, err := mjbuild.ParseArgs(raw)
	if err != nil {
		return err
	}

	for _, arg := range parsed {
		fmt.Fprintf(cmd.OutOrStdout(), "%q\n", arg)
	}
	return nil
}
