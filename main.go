package main

import "shared-save/cmd"

func main() {
	cmd.Execute()
}
