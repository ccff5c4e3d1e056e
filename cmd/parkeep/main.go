package main

import (
	"github.com/parkeep/parkeep/cmd/parkeep/cmd"
)

func main() {
	cmd.Execute()
}
