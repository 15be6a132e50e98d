package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leo4life/ethan-core/internal/application/handlers"
)

func newKnowledgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "knowledge",
		Short: "Manage the learned fact store",
	}

	cmd.AddCommand(
		newKnowledgeViewCmd(),
		newKnowledgeHistoryCmd(),
		newKnowledgeEditCmd(),
		newKnowledgeRollbackCmd(),
	)

	return cmd
}

func newKnowledgeViewCmd() *cobra.Command {
	var versionID int

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Show the current fact list (or a specific version)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				version, err := d.Knowledge.View(cmd.Context(), versionID)
				if errors.Is(err, handlers.ErrVersionNotFound) {
					fmt.Println("No knowledge yet.")
					return nil
				}
				if err != nil {
					return err
				}
				printVersionHeader(version.ID, version.Author, version.Note, version.CreatedAt.Format("2006-01-02 15:04"))
				if len(version.Payload) == 0 {
					fmt.Println("(empty)")
					return nil
				}
				for i, entry := range version.Payload {
					fmt.Printf("%d. %s (added %s)\n", i+1, entry.Text, entry.AddedAt.Format("2006-01-02"))
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&versionID, "version", "v", 0, "Version id to show (default: current)")

	return cmd
}

func newKnowledgeHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List kept knowledge versions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				versions := d.Knowledge.History(cmd.Context(), limit)
				if len(versions) == 0 {
					fmt.Println("No knowledge versions yet.")
					return nil
				}
				for _, v := range versions {
					note := v.Note
					if note == "" {
						note = factCount(v.Payload)
					} else {
						note = fmt.Sprintf("%s, %s", note, factCount(v.Payload))
					}
					printVersionLine(v.ID, v.Author, note, v.CreatedAt.Format("2006-01-02 15:04"))
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", historyPageLimit, "Maximum versions to list")

	return cmd
}

func newKnowledgeEditCmd() *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:   "edit <file>",
		Short: "Replace the fact list with a JSON array from a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			return withDeps(func(d *Deps) error {
				version, err := d.Knowledge.Replace(cmd.Context(), payload, globalUser, message)
				if errors.Is(err, handlers.ErrWrongContentType) {
					return fmt.Errorf("%s is not a JSON array of {\"text\", \"added_at\"} entries", args[0])
				}
				if err != nil {
					return err
				}
				fmt.Printf("Saved knowledge v%d (%s)\n", version.ID, factCount(version.Payload))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "Commit message for the new version")

	return cmd
}

func newKnowledgeRollbackCmd() *cobra.Command {
	var versionID int

	cmd := &cobra.Command{
		Use:   "rollback",
		Short: "Restore an older knowledge version as a new version",
		RunE: func(cmd *cobra.Command, args []string) error {
			if versionID <= 0 {
				return errors.New("version is required (use --version)")
			}
			return withDeps(func(d *Deps) error {
				version, err := d.Knowledge.Rollback(cmd.Context(), versionID, globalUser)
				if errors.Is(err, handlers.ErrVersionNotFound) {
					fmt.Printf("Version %d not found.\n", versionID)
					return nil
				}
				if err != nil {
					return err
				}
				fmt.Printf("Restored v%d as v%d (%s)\n", versionID, version.ID, factCount(version.Payload))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&versionID, "version", "v", 0, "Version id to restore")

	return cmd
}
