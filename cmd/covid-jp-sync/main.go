package main

import "github.com/pfrederiksen/covid-jp-sync/internal/cli"

func main() {
	cli.Execute()
}
