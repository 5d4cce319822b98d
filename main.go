package main

import "github.com/greenbasket/grocer/cmd"

func main() {
	cmd.Start()
}
