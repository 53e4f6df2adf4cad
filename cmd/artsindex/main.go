package main

import "github.com/pfrederiksen/artsindex/internal/cli"

func main() {
	cli.Execute()
}
