/*
CommitGuard - commit messages from an LLM, with secrets kept out of the request
*/
package main

import (
	"os"

	"github.com/huimingz/commitguard/internal/cli"
)

// Version information (injected at build time)
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	cli.SetVersionInfo(Version, GitCommit, BuildTime)
	os.Exit(cli.ExitCode(cli.Execute()))
}
