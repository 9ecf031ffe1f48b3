package build

import "strings"

// The package index refresh command run before installation.
const updateCommand = "apt-get update"

// Returns the non-interactive installation command for the given packages.
func installCommand(packages []string) string {
	return "apt-get install -y --no-install-recommends " + strings.Join(packages, " ")
}

// Environment applied to package-manager commands so installation never
// prompts.
func installEnv() []string {
	return []string{"DEBIAN_FRONTEND=noninteractive"}
}
