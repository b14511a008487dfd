// docstore - query and edit MongoDB documents from the command line
package main

import (
	"os"

	"github.com/agenttrace/docstore/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
