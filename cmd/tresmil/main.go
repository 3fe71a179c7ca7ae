package main

import "github.com/mcoot/tresmil/internal/cli"

func main() {
	cli.Execute()
}
