package main

import (
	"github.com/mkleiven/stoltzen-results/internal/cli"
)

func main() {
	cli.Execute()
}
