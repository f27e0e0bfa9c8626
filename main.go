package main

import "localchat/cmd"

func main() {
	cmd.Execute()
}
