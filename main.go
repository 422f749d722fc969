package main

import "dusk/cmd"

func main() {
	cmd.Execute()
}
