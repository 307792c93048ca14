// Command harvester harvests wiki content and issue-tracker tickets.
package main

import (
	"context"
	"os"

	"github.com/custodia-labs/harvester/internal/adapters/driving/cli"
)

// version is overridden with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := cli.Execute(context.Background(), version); err != nil {
		os.Exit(1)
	}
}
