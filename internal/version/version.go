package version

import (
	"os/exec"
	"strings"
)

// Version will be set during build time via ldflags, fallback to Git
var Version = "dev"

// GitCommit will be set during build time via ldflags
var GitCommit = "unknown"

// GetVersionInfo returns formatted version information
func GetVersionInfo() string {
	if Version == "dev" {
		if gitVersion := getGitVersion(); gitVersion != "" {
			return gitVersion
		}
	}
	if GitCommit != "unknown" {
		return Version + " (commit " + GitCommit + ")"
	}
	return Version
}

// getGitVersion attempts to get version from Git tags
func getGitVersion() string {
	cmd := exec.Command("git", "describe", "--tags", "--abbrev=0")
	if output, err := cmd.Output(); err == nil {
		if v := strings.TrimSpace(string(output)); v != "" {
			return strings.TrimPrefix(v, "v")
		}
	}

	cmd = exec.Command("git", "rev-parse", "--short", "HEAD")
	if output, err := cmd.Output(); err == nil {
		if commit := strings.TrimSpace(string(output)); commit != "" {
			return "dev-" + commit
		}
	}

	return ""
}
