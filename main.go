package main

import "github.com/tsdbkit/fluxbatch/cmd"

func main() {
	cmd.Execute()
}
