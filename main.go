package main

import "signup-be/cmd"

func main() {
	cmd.Execute()
}
