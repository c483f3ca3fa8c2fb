package main

import (
	"fmt"
	"os"

	"github.com/platinummonkey/visionrecords/pkg/cli"
	"github.com/platinummonkey/visionrecords/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	rootCmd := cli.NewRootCommand(&cli.Env{Config: cfg, Out: os.Stdout})

	if err := rootCmd.Execute(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
