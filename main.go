package main

import "github.com/notargets/softweld/cmd"

func main() {
	cmd.Execute()
}
