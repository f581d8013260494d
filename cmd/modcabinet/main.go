package main

import (
	"go-modcabinet/cmd/modcabinet/cmd"
)

func main() {
	// Execute the root command (defined in cmd/root.go)
	cmd.Execute()
}
