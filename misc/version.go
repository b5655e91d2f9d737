// Package misc keeps build time information.
package misc

var (
	appName = "pagemaker"
	version = "dev"
	gitHash = "unknown"
)

// GetAppName returns program name used for logs, reports and CLI.
func GetAppName() string {
	return appName
}

// GetVersion returns program version, set at build time with -ldflags "-X pagemaker/misc.version=...".
func GetVersion() string {
	return version
}

// GetGitHash returns source control revision the binary was built from.
func GetGitHash() string {
	return gitHash
}
