package main

import "github.com/papapumpkin/mcegar/cmd"

func main() {
	cmd.Execute()
}
