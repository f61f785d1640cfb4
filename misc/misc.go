// Package misc keeps build time information about the program.
package misc

// Set with -ldflags "-X fser/misc.version=... -X fser/misc.gitHash=..."
var (
	version = "dev"
	gitHash = "unknown"
)

const appName = "fser"

func GetAppName() string {
	return appName
}

func GetVersion() string {
	return version
}

func GetGitHash() string {
	return gitHash
}
