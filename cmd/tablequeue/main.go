package main

import (
	"github.com/poolhall/tablequeue/internal/cli"
)

func main() {
	cli.Execute()
}
