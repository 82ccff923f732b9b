package cli

import "fmt"

// These are set via the -ldflags option in the release build.
var VersionName = "n/a"
var GitCommit = "n/a"
var BuildDate = "n/a"

func PrintVersion() {
	fmt.Printf("Version: %s\nCommit: %s\nDate: %s\n", VersionName, GitCommit, BuildDate)
}
