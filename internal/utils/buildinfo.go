package utils

import (
	"os/exec"
	"runtime/debug"
	"strings"
)

const (
	unknownVersion     = "unknown"
	developmentVersion = "(devel)"
)

// GetApplicationVersion reports the module version recorded in the build info.
// Development builds fall back to `git describe` in the working directory.
func GetApplicationVersion() string {
	buildInfo, buildInfoAvailable := debug.ReadBuildInfo()
	if buildInfoAvailable && buildInfo.Main.Version != "" && buildInfo.Main.Version != developmentVersion {
		return buildInfo.Main.Version
	}
	// #nosec G204
	describeOutput, describeError := exec.Command("git", "describe", "--tags", "--always", "--dirty").Output()
	if describeError == nil {
		if described := strings.TrimSpace(string(describeOutput)); described != "" {
			return described
		}
	}
	return unknownVersion
}

// SubmitterName returns the identifier attached to uploaded audits, e.g. "cdigest-1.2.0".
func SubmitterName(version string) string {
	const applicationName = "cdigest"
	if version == "" || version == unknownVersion {
		return applicationName
	}
	return applicationName + "-" + strings.TrimPrefix(version, "v")
}
