package main

import (
	"context"
	"fmt"
	"os"

	mjbuild "github.com/contriboss/mujoco-build-go"
	"github.com/contriboss/mujoco-build-go/internal/cli"
)

func main() {
	if err := cli.Execute(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		// A failing CMake run exits with CMake's own status.
		os.Exit(mjbuild.ExitCode(err))
	}
}
