package main

import "agora/dialectic/cmd"

func main() {
	cmd.Execute()
}
