// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"texbox/internal/config"
)

var (
	// Verbose enables verbose output
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "texbox",
		Short: "A containerized document typesetting environment",
		Long: TitleStyle.Render("texbox") + SubtitleStyle.Render(" - A containerized document typesetting environment") + `

texbox builds a container image carrying the full TeX toolchain, boots a
single long-lived build container from it, and runs document builds inside
that container. Sources stay on the host and are exposed through a union
mount; artifacts land in the host output directory with the operator's own
file ownership.

` + SubtitleStyle.Render("Typical session:") + `
  1. texbox build           Build the toolchain image
  2. texbox up              (Re)create and start the build container
  3. texbox make            Typeset the document
  4. texbox shell           Poke around inside the container

` + SubtitleStyle.Render("Examples:") + `
  texbox build --no-cache   Rebuild the image from scratch
  texbox make               Build the document, report the artifact
  texbox clean --all        Remove artifacts, containers and stale images
  texbox config show        Show current configuration`,
	}
)

func init() {
	cobra.OnInitialize(initRootConfig)

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/texbox/config.toml)")

	// Add subcommands
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(upCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(makeCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(entryCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// Use fang.Execute for enhanced Cobra styling
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(versionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(1)
	}
}

// initRootConfig wires logging and the config file path before any RunE
// handler executes.
func initRootConfig() {
	if cfgFile != "" {
		config.SetConfigFilePathOverride(cfgFile)
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: false,
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	slog.SetDefault(slog.New(logger))
}

// loadConfig loads and validates the configuration for a RunE handler.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	return cfg, nil
}
