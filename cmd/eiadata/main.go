package main

import "github.com/FrankLong1/eia-data/internal/cli"

func main() {
	cli.Execute()
}
