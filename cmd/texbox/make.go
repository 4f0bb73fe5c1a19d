// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"texbox/internal/buildenv"
	"texbox/internal/config"
	"texbox/internal/container"
	"texbox/internal/gitver"
	"texbox/internal/typeset"
	"texbox/pkg/types"
)

var makeCmd = &cobra.Command{
	Use:   "make",
	Short: "Typeset the document in the build container",
	Long: `Run the configured build command inside the running build container.

The command executes through the entry stage, in the union-mounted working
directory, as the unprivileged host-matched account. Its exit code becomes
texbox's exit code.`,
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

		warnUncommitted(root, cfg.Paths.Source)

		img, err := buildenv.ImageByName(buildenv.ToolLatexImage)
		if err != nil {
			return err
		}
		name := buildenv.ContainerNameFor(string(cfg.ImagePrefix), img.Name)
		runner := typeset.NewRunner(engine, cfg, root)

		exists, err := engine.ContainerExists(cmd.Context(), name)
		if err != nil {
			return err
		}

		var code types.ExitCode
		if exists {
			code, err = runner.Build(cmd.Context(), name, typeset.Streams{
				Stdout: cmd.OutOrStdout(),
				Stderr: cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}
		} else {
			// No long-lived container; run the build in a one-shot one.
			slog.Info("build container not found, using a one-shot container", "container", name)
			code, err = makeOneShot(cmd, cfg, engine, root, img, runner)
			if err != nil {
				return err
			}
		}

		if !code.IsSuccess() {
			return &ExitError{Code: code, Err: fmt.Errorf("build command exited with status %s", code)}
		}

		fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("✓")+" "+CmdStyle.Render(runner.ArtifactPath()))
		return nil
	},
}

// makeOneShot runs the build command in a temporary privileged container that
// is removed on exit, mirroring the long-lived container's mounts and
// environment.
func makeOneShot(cmd *cobra.Command, cfg *config.Config, engine container.Engine, root string, img buildenv.Image, runner *typeset.Runner) (types.ExitCode, error) {
	command, err := runner.SplitCommand()
	if err != nil {
		return types.ExitCodeGeneralError, err
	}
	spec, err := containerSpec(cfg, root, img)
	if err != nil {
		return types.ExitCodeGeneralError, err
	}

	boot := buildenv.NewBootstrap(engine, string(cfg.ImagePrefix))
	result, err := boot.RunOnce(cmd.Context(), spec, command, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return types.ExitCodeGeneralError, err
	}
	if result.Error != nil {
		return result.ExitCode, result.Error
	}
	if result.ExitCode.IsSuccess() {
		runner.ReportArtifact()
	}
	return result.ExitCode, nil
}

// warnUncommitted flags builds from a source directory with uncommitted
// changes, so a shipped artifact can always be traced to a commit.
func warnUncommitted(root, sourceRel string) {
	modified, err := gitver.DirModified(root, sourceRel)
	if err != nil {
		slog.Debug("source modification check skipped", "error", err)
		return
	}
	if modified {
		slog.Warn("source directory has uncommitted changes", "dir", sourceRel)
	}
}
