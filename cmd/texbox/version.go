// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the semantic version (set via -ldflags).
var Version = "dev"

// versionString combines the release version with the project's git state.
func versionString() string {
	root, err := projectRoot()
	if err != nil {
		return Version
	}
	return fmt.Sprintf("%s (image version %s)", Version, resolveVersion(root))
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show texbox and engine versions",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), "texbox "+versionString())

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		engine, err := newEngine(cfg)
		if err != nil {
			// A missing engine is informative here, not fatal.
			fmt.Fprintln(cmd.OutOrStdout(), SubtitleStyle.Render("engine: unavailable"))
			return nil
		}
		engineVersion, err := engine.Version(cmd.Context())
		if err != nil {
			engineVersion = "unknown"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", engine.Name(), engineVersion)
		return nil
	},
}
