// Package version provides the current server version.
package version

import "fmt"

// Version is the semver release of the server.
var Version = "0.3.1"

// DevVersion is the version suffix used outside of prod mode.
var DevVersion = fmt.Sprintf("%s-dev", Version)

// GetCurrentVersion returns the version string for the given mode.
func GetCurrentVersion(mode string) string {
	if mode == "prod" {
		return Version
	}
	return DevVersion
}
