package main

import (
	"github.com/lspgroup/fleetopt-go/internal/adapters/cli"
)

func main() {
	cli.Execute()
}
