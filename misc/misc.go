// Package misc keeps build time information shared by all binaries.
package misc

// Set at link time with -ldflags "-X tripdoc/misc.version=... -X tripdoc/misc.gitHash=...".
var (
	version = "dev"
	gitHash = "unknown"
)

func GetAppName() string {
	return "tripdoc"
}

func GetVersion() string {
	return version
}

func GetGitHash() string {
	return gitHash
}
