package main

import "github.com/tycoonsim/tycoon-go/internal/adapters/cli"

func main() {
	cli.Execute()
}
