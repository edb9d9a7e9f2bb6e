package main

import "github.com/robled/rocket-depot/internal/cli"

func main() {
	cli.Execute()
}
