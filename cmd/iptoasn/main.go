package main

import (
	"iptoasn/internal/cli"

	"github.com/charmbracelet/log"
)

func main() {
	if err := cli.Execute(); err != nil {
		log.Fatal("application terminated", "error", err)
	}
}
