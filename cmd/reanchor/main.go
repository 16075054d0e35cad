package main

import "github.com/forPelevin/reanchor/internal/cli"

func main() {
	cli.Main()
}
