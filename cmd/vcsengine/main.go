package main

import "github.com/bryanchriswhite/vcsengine/cmd/vcsengine/commands"

func main() {
	commands.Execute()
}
