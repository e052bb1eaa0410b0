// This package is used to store the version of the hook during runtime.
// The values are set during runtime in the main package.
package version

var (
	// Version is the version of the hook.
	Version = ""

	// CommitSHA is the commit SHA of the hook.
	CommitSHA = ""
)
