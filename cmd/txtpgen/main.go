// Command txtpgen generates TXTP playlists from decoded sound bank dumps.
package main

import (
	"os"

	"github.com/roach88/txtpgen/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(cli.GetExitCode(err))
	}
}
