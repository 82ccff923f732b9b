package main

import (
	"github.com/fileup/fileupd/cmd/fileupd/cli"
)

func main() {
	cli.ParseFlags()

	if cli.Flags.ShowVersion {
		cli.PrintVersion()
		return
	}

	cli.SetupStructuredLogger()
	cli.PrepareGreeting()
	cli.Serve()
}
