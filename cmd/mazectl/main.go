package main

import (
	"mazerace/internal/cli"
)

func main() {
	cli.Execute()
}
