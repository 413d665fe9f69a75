package main

import "github.com/kozaktomas/picasso-kb/cmd"

func main() {
	cmd.Execute()
}
