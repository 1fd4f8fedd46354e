package version

import "fmt"

// Default value is overridden at build time via -ldflags.
// Keep this lower-case so ldflags can set it without exporting internals.
var buildVersion = "0.3.0"

// String returns the version of the running binary.
func String() string {
	return buildVersion
}

// UserAgent identifies this service to the upstream database host.
func UserAgent() string {
	return fmt.Sprintf("iptoasn-webservice/%s", buildVersion)
}
