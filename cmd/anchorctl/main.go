// Command anchorctl builds keys, signatures, tokens and credential
// submissions for the anchor API.
package main

import (
	"fmt"
	"os"

	cli "github.com/urfave/cli"
)

var cliApp = cli.NewApp()

var gitTag = "dev"

func init() {
	cliApp.Name = "anchorctl"
	cliApp.Usage = "Client tooling for the DID anchor."
	cliApp.Version = gitTag
	cliApp.Commands = cmds
}

func main() {
	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "anchorctl:", err)
		os.Exit(1)
	}
}
