package main

import "github.com/anvil-ide/anvil/cmd/anvil/cli"

func main() {
	cli.Execute()
}
