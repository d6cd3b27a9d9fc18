package main

import "poolratio/internal/cli"

func main() {
	cli.Execute()
}
