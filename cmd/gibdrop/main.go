package main

import "gibdrop/cmd/gibdrop/cmd"

func main() {
	cmd.Execute()
}
