package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPauseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pause",
		Short: "Stop replying globally",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				_, changed, err := d.State.Pause(cmd.Context(), globalUser)
				if err != nil {
					return err
				}
				if !changed {
					fmt.Println("Already paused.")
					return nil
				}
				fmt.Println("Paused. Ethan will stay quiet until 'ethan resume'.")
				return nil
			})
		},
	}
}

func newResumeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Resume replying globally",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(d *Deps) error {
				_, changed, err := d.State.Resume(cmd.Context(), globalUser)
				if err != nil {
					return err
				}
				if !changed {
					fmt.Println("Already running.")
					return nil
				}
				fmt.Println("Resumed. Ethan is back.")
				return nil
			})
		},
	}
}
