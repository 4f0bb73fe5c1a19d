// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"texbox/internal/entry"
)

// entryCmd is the in-container entry stage. It is hidden: operators never
// invoke it, the container runtime does, through the bind-mounted texbox
// binary.
var entryCmd = &cobra.Command{
	Use:    "entry -- command [args...]",
	Short:  "In-container entry stage",
	Hidden: true,
	Args:   cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := entry.OptionsFromEnv(os.Getenv, args)
		if err != nil {
			return err
		}
		// Run only returns on error; on success the process is replaced
		// by the requested command.
		return opts.Run()
	},
}
