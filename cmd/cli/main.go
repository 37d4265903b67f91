// ltab - Log-to-Table Pipeline
//
// ltab is a batch tool that converts large line-oriented log files into
// structured delimited tables by running pattern parsers over the file
// in parallel chunks.
package main

import (
	"os"

	"ltab/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
