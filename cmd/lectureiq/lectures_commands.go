package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"lectureiq/internal/api"
)

func newLecturesCommand(ctx *commandContext) *cobra.Command {
	lecturesCmd := &cobra.Command{
		Use:     "lectures",
		Aliases: []string{"lecture"},
		Short:   "Manage uploaded lectures",
	}

	lecturesCmd.AddCommand(newLecturesListCommand(ctx))
	lecturesCmd.AddCommand(newLecturesShowCommand(ctx))
	lecturesCmd.AddCommand(newLecturesDeleteCommand(ctx))
	lecturesCmd.AddCommand(newLecturesTranscriptCommand(ctx))

	return lecturesCmd
}

func newLecturesListCommand(ctx *commandContext) *cobra.Command {
	var page int
	var limit int
	var jsonOut bool
	var follow bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List uploaded lectures, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := ctx.requireAuth()
			if err != nil {
				return err
			}

			if follow {
				return followList(cmd, ctx)
			}

			lectures, err := client.List(cmd.Context(), page, limit)
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, lectures)
			}

			printLectureTable(cmd, lectures)
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&limit, "limit", api.DefaultPageSize, "Lectures per page (max 50)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the page as JSON")
	cmd.Flags().BoolVarP(&follow, "watch", "w", false, "Re-render while any lecture is still processing")
	return cmd
}

func printLectureTable(cmd *cobra.Command, lectures []api.Lecture) {
	out := cmd.OutOrStdout()
	if len(lectures) == 0 {
		fmt.Fprintln(out, "No lectures uploaded yet")
		return
	}
	fmt.Fprintln(out, renderLectureTable(lectures, useColor(os.Stdout)))
}

// followList re-renders the first page on every refresh. The subscription
// stops polling on its own once no lecture is active; interrupt to exit.
func followList(cmd *cobra.Command, ctx *commandContext) error {
	controller, err := ctx.newController()
	if err != nil {
		return err
	}
	defer controller.Close()

	settled := make(chan struct{}, 1)
	sub, err := controller.SubscribeList(cmd.Context(), func(lectures []api.Lecture) {
		printLectureTable(cmd, lectures)
		active := false
		for _, lecture := range lectures {
			if lecture.Status.Active() {
				active = true
				break
			}
		}
		if !active {
			select {
			case settled <- struct{}{}:
			default:
			}
		}
	})
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()

	select {
	case <-settled:
		return nil
	case <-cmd.Context().Done():
		return cmd.Context().Err()
	}
}

func newLecturesShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	var section string

	cmd := &cobra.Command{
		Use:   "show <lecture-id>",
		Short: "Show a lecture and its study material",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := ctx.requireAuth()
			if err != nil {
				return err
			}

			detail, err := client.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, detail)
			}
			return renderLectureDetail(cmd.OutOrStdout(), detail, section, useColor(os.Stdout))
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the full record as JSON")
	cmd.Flags().StringVar(&section, "section", "", "Show one section only (notes, flashcards, quiz, resources)")
	return cmd
}

func newLecturesDeleteCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <lecture-id>",
		Short: "Delete a lecture and its stored audio",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := ctx.requireAuth()
			if err != nil {
				return err
			}

			if !force {
				ok, err := confirm(cmd, fmt.Sprintf("Delete lecture %s? This cannot be undone [y/N]: ", args[0]))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
					return nil
				}
			}

			if err := client.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted lecture %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip the confirmation prompt")
	return cmd
}

func newLecturesTranscriptCommand(ctx *commandContext) *cobra.Command {
	var timestamps bool

	cmd := &cobra.Command{
		Use:   "transcript <lecture-id>",
		Short: "Print a lecture's transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := ctx.requireAuth()
			if err != nil {
				return err
			}

			detail, err := client.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if detail.Transcript == nil {
				if detail.Status.Active() {
					return fmt.Errorf("lecture is still %s; no transcript yet", statusLabel(detail.Status))
				}
				return fmt.Errorf("lecture has no transcript")
			}

			out := cmd.OutOrStdout()
			if !timestamps {
				fmt.Fprintln(out, detail.Transcript.FullText)
				return nil
			}
			for _, segment := range detail.Transcript.Segments {
				fmt.Fprintf(out, "[%s] %s\n", formatTimestamp(segment.Start), segment.Text)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&timestamps, "timestamps", false, "Prefix each segment with its start time")
	return cmd
}

func progressCell(lecture api.Lecture) string {
	if lecture.Status.IsTerminal() {
		return "-"
	}
	return strconv.Itoa(lecture.Progress) + "%"
}

func formatTimestamp(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// confirm reads a yes/no answer from the command's stdin.
func confirm(cmd *cobra.Command, prompt string) (bool, error) {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	var answer string
	if _, err := fmt.Fscanln(cmd.InOrStdin(), &answer); err != nil {
		return false, nil
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}
