package main

import "github.com/jserwatka/network/cmd/network/commands"

func main() {
	commands.Execute()
}
