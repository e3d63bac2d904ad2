package main

import (
	"github.com/custodia-labs/lingua-cli/internal/adapters/driving/cli"
)

func main() {
	cli.Execute()
}
