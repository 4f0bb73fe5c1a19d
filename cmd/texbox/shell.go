// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"texbox/internal/buildenv"
	"texbox/internal/container"
	"texbox/internal/entry"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Open an interactive shell in the build container",
	Long: `Exec the configured shell inside the running build container.

The shell goes through the entry stage: it starts in the union-mounted
working directory as the unprivileged host-matched account.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		engine, err := newEngine(cfg)
		if err != nil {
			return err
		}

		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return fmt.Errorf("shell requires a terminal on stdin")
		}

		img, err := buildenv.ImageByName(buildenv.ToolLatexImage)
		if err != nil {
			return err
		}
		name := buildenv.ContainerNameFor(string(cfg.ImagePrefix), img.Name)

		result, err := engine.Exec(cmd.Context(), name, entry.WrapCommand([]string{cfg.Build.Shell}), container.ExecOptions{
			Interactive: true,
			TTY:         true,
			Stdin:       os.Stdin,
			Stdout:      os.Stdout,
			Stderr:      os.Stderr,
		})
		if err != nil {
			return err
		}
		if result.Error != nil {
			return result.Error
		}
		if !result.ExitCode.IsSuccess() {
			return &ExitError{Code: result.ExitCode}
		}
		return nil
	},
}
