// Command rolo is the contact batch tool: bulk import with sealed
// cards, duplicate merge, and address-book cleanup against a remote
// contact store.
package main

import (
	"os"

	"github.com/ldellis/rolo/internal/cli"
	"github.com/ldellis/rolo/pkg/version"
)

func main() {
	os.Exit(run())
}

// run executes the root command and maps the outcome onto a process
// exit code. Cobra already printed the error by the time it returns.
func run() int {
	if err := cli.NewRootCmd(version.GetVersion()).Execute(); err != nil {
		return 1
	}
	return 0
}
