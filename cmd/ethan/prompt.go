package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leo4life/ethan-core/internal/application/handlers"
	"github.com/leo4life/ethan-core/internal/domain/entities"
)

func newPromptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Manage the persona instruction document",
	}

	cmd.AddCommand(
		newPromptViewCmd(),
		newPromptHistoryCmd(),
		newPromptEditCmd(),
		newPromptRollbackCmd(),
	)

	return cmd
}

func newPromptViewCmd() *cobra.Command {
	var versionID int

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Show the current prompt (or a specific version)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				version, err := d.Prompt.View(cmd.Context(), versionID)
				if errors.Is(err, handlers.ErrVersionNotFound) {
					fmt.Println("No prompt set.")
					return nil
				}
				if err != nil {
					return err
				}
				printVersionHeader(version.ID, version.Author, version.Note, version.CreatedAt.Format("2006-01-02 15:04"))
				fmt.Println(version.Payload)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&versionID, "version", "v", 0, "Version id to show (default: current)")

	return cmd
}

func newPromptHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List kept prompt versions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				versions := d.Prompt.History(cmd.Context(), limit)
				if len(versions) == 0 {
					fmt.Println("No prompt versions yet.")
					return nil
				}
				for _, v := range versions {
					printVersionLine(v.ID, v.Author, v.Note, v.CreatedAt.Format("2006-01-02 15:04"))
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", historyPageLimit, "Maximum versions to list")

	return cmd
}

func newPromptEditCmd() *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:   "edit <file>",
		Short: "Replace the prompt with the contents of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			return withDeps(func(d *Deps) error {
				version, err := d.Prompt.Replace(cmd.Context(), payload, globalUser, message)
				if err != nil {
					return err
				}
				fmt.Printf("Saved prompt v%d\n", version.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "Commit message for the new version")

	return cmd
}

func newPromptRollbackCmd() *cobra.Command {
	var versionID int

	cmd := &cobra.Command{
		Use:   "rollback",
		Short: "Restore an older prompt version as a new version",
		RunE: func(cmd *cobra.Command, args []string) error {
			if versionID <= 0 {
				return errors.New("version is required (use --version)")
			}
			return withDeps(func(d *Deps) error {
				version, err := d.Prompt.Rollback(cmd.Context(), versionID, globalUser)
				if errors.Is(err, handlers.ErrVersionNotFound) {
					fmt.Printf("Version %d not found.\n", versionID)
					return nil
				}
				if err != nil {
					return err
				}
				fmt.Printf("Restored v%d as v%d\n", versionID, version.ID)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&versionID, "version", "v", 0, "Version id to restore")

	return cmd
}

func printVersionHeader(id int, author, note, when string) {
	fmt.Printf("v%d by %s at %s", id, author, when)
	if note != "" {
		fmt.Printf(" (%s)", note)
	}
	fmt.Println()
	fmt.Println()
}

func printVersionLine(id int, author, note, when string) {
	fmt.Printf("v%d  %s  %s", id, when, author)
	if note != "" {
		fmt.Printf("  %s", note)
	}
	fmt.Println()
}

// factCount is shared by the knowledge commands.
func factCount(list entities.FactList) string {
	if len(list) == 1 {
		return "1 fact"
	}
	return fmt.Sprintf("%d facts", len(list))
}
