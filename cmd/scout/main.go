package main

import (
	"os"

	"github.com/wonny/tokenscout/cmd/scout/commands"
)

// main is the entry point for the tokenscout CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/scout [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
