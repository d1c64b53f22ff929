package main

import "github.com/pfrederiksen/racecal/internal/cli"

func main() {
	cli.Execute()
}
