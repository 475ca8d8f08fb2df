package main

import "photosweep/cmd/photosweep/commands"

func main() {
	commands.Execute()
}
