package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leo4life/ethan-core/internal/infrastructure/config"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize an ethan workspace",
		Long:  "Creates a .ethan directory with default configuration.",
		RunE:  runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	if config.Exists(cwd) {
		return fmt.Errorf("ethan already initialized in %s", cwd)
	}

	if err := config.WriteDefault(cwd); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}

	fmt.Printf("Created %s\n", config.ConfigFilePath(cwd))
	fmt.Println("Set OPENAI_API_KEY (or llm.api_key) before running 'ethan chat'.")

	return nil
}
