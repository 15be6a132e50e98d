// Package main provides the entry point for the ethan CLI application.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	version    = "0.1.0-dev"
	globalUser string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	rootCmd := &cobra.Command{
		Use:     "ethan",
		Short:   "A chat companion with a versioned persona and human-approved memory",
		Version: version,
	}

	rootCmd.PersistentFlags().StringVarP(&globalUser, "as", "u", "admin", "Identity recorded on edits and decisions")

	rootCmd.AddCommand(
		newInitCmd(),
		newChatCmd(),
		newPromptCmd(),
		newKnowledgeCmd(),
		newPauseCmd(),
		newResumeCmd(),
	)

	return rootCmd.ExecuteContext(ctx)
}
