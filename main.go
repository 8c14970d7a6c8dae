package main

import "github.com/positivepasswordbook/ppbbridge/cmd"

func main() {
	cmd.Execute()
}
