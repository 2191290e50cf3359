package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lectureiq/internal/api"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <lecture-id>",
		Short: "Follow a lecture until processing finishes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, _, err := ctx.requireAuth(); err != nil {
				return err
			}
			return followLecture(cmd, ctx, args[0])
		},
	}
}

// followLecture subscribes to one lecture and prints each state change until a
// terminal snapshot arrives.
func followLecture(cmd *cobra.Command, ctx *commandContext, id string) error {
	controller, err := ctx.newController()
	if err != nil {
		return err
	}
	defer controller.Close()

	out := cmd.OutOrStdout()
	colorize := useColor(os.Stdout)

	done := make(chan *api.LectureDetail, 1)
	sub, err := controller.Subscribe(cmd.Context(), id, func(detail *api.LectureDetail) {
		fmt.Fprintln(out, renderLectureProgress(detail, colorize))
		if detail.Status.IsTerminal() {
			select {
			case done <- detail:
			default:
			}
		}
	})
	if err != nil {
		return fmt.Errorf("watch lecture %s: %w", id, err)
	}
	defer sub.Unsubscribe()

	select {
	case detail := <-done:
		if detail.Status == api.StatusFailed {
			if detail.ErrorMessage != "" {
				return fmt.Errorf("processing failed: %s", detail.ErrorMessage)
			}
			return fmt.Errorf("processing failed")
		}
		fmt.Fprintf(out, "Done. View the study material with `lectureiq lectures show %s`\n", id)
		return nil
	case <-cmd.Context().Done():
		return cmd.Context().Err()
	}
}
