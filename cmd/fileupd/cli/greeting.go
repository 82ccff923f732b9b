package cli

import (
	"fmt"
	"net/http"
)

var greeting string

func PrepareGreeting() {
	greeting = fmt.Sprintf(
		`Welcome to fileupd
==================

fileupd is running, but this is only the welcome message. The places that
really matter:

- %s - send your resumable uploads to this endpoint
- %s - gather statistics to keep fileupd running smoothly

Version = %s
GitCommit = %s
BuildDate = %s
`, Flags.Basepath, Flags.MetricsPath, VersionName, GitCommit, BuildDate)
}

func DisplayGreeting(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(greeting))
}
