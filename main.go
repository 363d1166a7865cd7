package main

import "github.com/notargets/gofield/cmd"

func main() {
	cmd.Execute()
}
