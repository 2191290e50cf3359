package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"lectureiq/internal/api"
)

func newUploadCommand(ctx *commandContext) *cobra.Command {
	var title string
	var follow bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "upload <audio-file>",
		Short: "Upload a lecture recording for processing",
		Long: "Upload an audio file (" + strings.Join(api.AllowedExtensions(), ", ") +
			") up to 100 MB. Processing continues on the service after the upload returns.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := ctx.requireAuth()
			if err != nil {
				return err
			}

			opts := api.UploadOptions{Title: title}
			var bar *progressbar.ProgressBar
			if !jsonOut && useColor(os.Stdout) {
				bar = progressbar.NewOptions(100,
					progressbar.OptionSetDescription("uploading"),
					progressbar.OptionSetWriter(cmd.ErrOrStderr()),
					progressbar.OptionClearOnFinish(),
					progressbar.OptionShowCount(),
				)
				opts.Progress = func(percent int) { _ = bar.Set(percent) }
			}

			lecture, err := client.Upload(cmd.Context(), args[0], opts)
			if bar != nil {
				_ = bar.Finish()
			}
			if err != nil {
				return fmt.Errorf("upload %s: %w", args[0], err)
			}

			if jsonOut {
				return writeJSON(cmd, lecture)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Uploaded %q (%s)\n", lecture.Title, lecture.ID)
			if !follow {
				fmt.Fprintf(out, "Track processing with `lectureiq watch %s`\n", lecture.ID)
				return nil
			}
			return followLecture(cmd, ctx, lecture.ID)
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Lecture title (defaults to the file name)")
	cmd.Flags().BoolVarP(&follow, "watch", "w", false, "Keep polling until processing finishes")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the created lecture as JSON")
	return cmd
}
