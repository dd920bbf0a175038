package main

import (
	"github.com/morler/oxidize/cmd"
)

func main() {
	cmd.Execute()
}
