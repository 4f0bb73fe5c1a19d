// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"texbox/internal/buildenv"
)

var buildNoCache bool

var buildCmd = &cobra.Command{
	Use:   "build [image...]",
	Short: "Build the typesetting toolchain image",
	Long: `Build the container image carrying the TeX toolchain, fonts and
certificate store.

The invoking user's numeric UID and GID are passed as build arguments so the
unprivileged in-container account matches the host operator. The image is
tagged with the project's git version and with the floating latest alias.`,
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

		version := resolveVersion(root)
		builder := buildenv.NewBuilder(engine, string(cfg.ImagePrefix), version, root)

		images := buildenv.DefaultImages()
		if len(args) > 0 {
			images = images[:0]
			for _, name := range args {
				img, err := buildenv.ImageByName(name)
				if err != nil {
					return err
				}
				images = append(images, img)
			}
		}

		for _, img := range images {
			if err := buildImage(cmd, builder, img); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	buildCmd.Flags().BoolVar(&buildNoCache, "no-cache", false, "rebuild without the image layer cache")
}

// buildImage builds one image. Verbose mode streams the engine's build
// output; otherwise a spinner runs and the captured output is shown only on
// failure.
func buildImage(cmd *cobra.Command, builder *buildenv.Builder, img buildenv.Image) error {
	streams := buildenv.BuildStreams{
		Stdout:  cmd.OutOrStdout(),
		Stderr:  cmd.ErrOrStderr(),
		NoCache: buildNoCache,
	}

	if verbose {
		err := builder.Build(cmd.Context(), img, streams)
		if err != nil {
			return err
		}
	} else {
		var captured bytes.Buffer
		streams.Stdout = &captured
		streams.Stderr = &captured

		s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
		s.Suffix = " building " + img.Name + " image"
		s.Start()
		err := builder.Build(cmd.Context(), img, streams)
		s.Stop()

		if err != nil {
			fmt.Fprint(cmd.ErrOrStderr(), captured.String())
			return err
		}
	}

	tags := builder.Tags(img)
	fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("✓")+" built "+CmdStyle.Render(string(tags[0])))
	return nil
}
