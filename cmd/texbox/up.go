// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"texbox/internal/buildenv"
)

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "(Re)create and start the build container",
	Long: `Create the build container from the most recently built image and start
it.

Any existing container of the same name is force-removed first; nothing is
preserved across recreation, all state lives in the bind mounts. The
container runs privileged so the entry stage can union-mount the sources
onto the working directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		engine, err := newEngine(cfg)
		if err != nil {
			return err
		}
		root, err := projectRoot()
		if err != nil {
			return err
		}

		boot := buildenv.NewBootstrap(engine, string(cfg.ImagePrefix))
		for _, img := range buildenv.DefaultImages() {
			spec, err := containerSpec(cfg, root, img)
			if err != nil {
				return err
			}
			if err := boot.Recreate(cmd.Context(), spec); err != nil {
				return err
			}
			name := boot.ContainerName(img)
			fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("✓")+" container "+CmdStyle.Render(string(name))+" is up")
		}
		return nil
	},
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the existing build container",
	Long: `Start the build container created by a previous 'texbox up' without
recreating it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		engine, err := newEngine(cfg)
		if err != nil {
			return err
		}

		boot := buildenv.NewBootstrap(engine, string(cfg.ImagePrefix))
		for _, img := range buildenv.DefaultImages() {
			if err := boot.Start(cmd.Context(), img); err != nil {
				return err
			}
			name := boot.ContainerName(img)
			fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("✓")+" container "+CmdStyle.Render(string(name))+" started")
		}
		return nil
	},
}
