package main

import "wakecal/internal/cli"

func main() {
	cli.Execute()
}
