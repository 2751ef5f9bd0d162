package main

import "github.com/christophervuu/flow/cmd"

func main() {
	cmd.Execute()
}
