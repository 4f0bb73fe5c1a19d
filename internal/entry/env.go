// SPDX-License-Identifier: MPL-2.0

package entry

// Environment variables threaded from the host into the build container.
// The entry stage consumes them on every container start and exec.
const (
	// EnvWorkDir is the union mount point and working directory.
	EnvWorkDir = "TEXBOX_WORKDIR"
	// EnvSourceDir is the bind-mounted document source directory.
	EnvSourceDir = "TEXBOX_SRC"
	// EnvOutputDir is the bind-mounted artifact output directory.
	EnvOutputDir = "TEXBOX_OUTPUT"
	// EnvResourcesDir is the bind-mounted shared assets directory.
	EnvResourcesDir = "TEXBOX_RESOURCES"
	// EnvHostUID is the numeric user ID of the host operator.
	EnvHostUID = "HOST_USER_UID"
	// EnvHostGID is the numeric group ID of the host operator.
	EnvHostGID = "HOST_USER_GID"
)

// BinaryPath is where the texbox binary is bind-mounted inside the
// container so it can serve as the entry stage.
const BinaryPath = "/usr/local/bin/texbox-entry"

// WrapCommand prefixes a command line with the in-container entry stage
// invocation, so the command runs behind the union mount, in the working
// directory, as the unprivileged host-matched account.
func WrapCommand(command []string) []string {
	argv := []string{BinaryPath, "entry", "--"}
	return append(argv, command...)
}
