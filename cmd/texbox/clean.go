// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"texbox/internal/buildenv"
	"texbox/internal/typeset"
)

var cleanAll bool

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove build artifacts",
	Long: `Remove the host output directory and stray editor backup files from the
source directory.

With --all, also remove the build container and every image version except
the most recently built one.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		root, err := projectRoot()
		if err != nil {
			return err
		}

		runner := typeset.NewRunner(nil, cfg, root)
		removed, err := runner.Clean()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %d artifact entries\n", removed)

		if !cleanAll {
			return nil
		}

		engine, err := newEngine(cfg)
		if err != nil {
			return err
		}
		cleaner := buildenv.NewCleaner(engine, string(cfg.ImagePrefix))
		for _, img := range buildenv.DefaultImages() {
			result, err := cleaner.Clean(cmd.Context(), img)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d containers, %d stale image versions of %s\n",
				result.ContainersRemoved, result.ImagesRemoved,
				buildenv.FullName(string(cfg.ImagePrefix), img.Name))
		}
		return nil
	},
}

func init() {
	cleanCmd.Flags().BoolVar(&cleanAll, "all", false, "also remove the container and stale image versions")
}
