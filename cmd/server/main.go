package main

import "forumapi/cmd/server/commands"

func main() {
	commands.Execute()
}
