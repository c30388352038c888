package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	mjbuild "github.com/contriboss/mujoco-build-go"
)

var verifyOpts struct {
	buildLib string
	metadata string
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check a staged package against its manifest",
	Args:  cobra.NoArgs,
	RunE:  runVerify,
}

func init() {
	verifyCmd.Flags().StringVar(&verifyOpts.buildLib, "build-lib", filepath.Join("build", "lib"), "root of the staged package tree")
	verifyCmd.Flags().StringVar(&verifyOpts.metadata, "metadata", "", "YAML file overriding the package metadata")
}

func runVerify(cmd *cobra.Command, args []string) error {
	meta, err := mjbuild.LoadMetadata(verifyOpts.metadata)
	if err != nil {
		return err
	}

	path := mjbuild.ManifestPath(verifyOpts.buildLib, meta)
	manifest, err := mjbuild.ReadManifest(path)
	if err != nil {
		return err
	}

	log.V(1).Info("verifying manifest", "path", path, "files", len(manifest.Files))
	if err := mjbuild.VerifyManifest(verifyOpts.buildLib, manifest); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ %d files match %s\n", len(manifest.Files), path)
	return nil
}
