// SPDX-License-Identifier: MPL-2.0

// texbox builds and drives a containerized document typesetting environment.
package main

import cmd "texbox/cmd/texbox"

func main() {
	cmd.Execute()
}
