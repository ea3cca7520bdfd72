package main

import "profile-server/cmd"

func main() {
	cmd.Execute()
}
