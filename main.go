package main

import (
	"github.com/salesopshq/salesops/cmd"
)

func main() {
	cmd.Execute()
}
