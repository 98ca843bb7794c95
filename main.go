// SPDX-License-Identifier: MPL-2.0

// Command buildforge bundles an application and its packages into a
// deployable build.
package main

import "buildforge/cmd/buildforge"

func main() {
	cmd.Execute()
}
