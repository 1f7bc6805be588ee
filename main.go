package main

import "blazehammer/cmd"

func main() {
	cmd.Execute()
}
