package main

import "github.com/drgolem/flickplayer/cmd"

func main() {
	cmd.Execute()
}
