package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"lectureiq/internal/quiz"
)

func newQuizCommand(ctx *commandContext) *cobra.Command {
	var answersFlag string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "quiz <lecture-id>",
		Short: "Take a lecture's quiz",
		Long: "Answer the lecture's multiple-choice questions and submit them for grading. " +
			"Pass answers as a comma-separated list of option numbers (1-4), one per question in order.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := ctx.requireAuth()
			if err != nil {
				return err
			}

			detail, err := client.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if detail.Status.Active() {
				return fmt.Errorf("lecture is still %s; the quiz is available once processing completes", statusLabel(detail.Status))
			}
			if len(detail.MCQs) == 0 {
				return fmt.Errorf("lecture has no quiz questions")
			}

			attempt := quiz.NewAttempt(len(detail.MCQs))
			if err := fillAttempt(attempt, answersFlag); err != nil {
				return err
			}
			answers, err := attempt.Answers()
			if err != nil {
				return err
			}

			result, err := client.SubmitQuiz(cmd.Context(), args[0], answers)
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, result)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Score: %d/%d (%.1f%%)\n", result.Score, result.Total, result.Percentage)
			for _, d := range result.Details {
				mark := "✔"
				if !d.IsCorrect {
					mark = "✘"
				}
				question := ""
				if d.QuestionIndex < len(detail.MCQs) {
					question = detail.MCQs[d.QuestionIndex].Question
				}
				fmt.Fprintf(out, "  %s Q%d: %s\n", mark, d.QuestionIndex+1, question)
				if !d.IsCorrect {
					fmt.Fprintf(out, "    answered %d, correct %d", d.YourAnswer+1, d.CorrectAnswer+1)
					if d.Explanation != "" {
						fmt.Fprintf(out, " (%s)", d.Explanation)
					}
					fmt.Fprintln(out)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&answersFlag, "answers", "a", "", "Comma-separated option numbers, e.g. 2,4,1")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the grading result as JSON")
	_ = cmd.MarkFlagRequired("answers")
	return cmd
}

// fillAttempt parses 1-based option numbers and records them in order.
func fillAttempt(attempt *quiz.Attempt, raw string) error {
	fields := strings.Split(raw, ",")
	if len(fields) != attempt.Total() {
		return fmt.Errorf("quiz has %d questions, got %d answers", attempt.Total(), len(fields))
	}
	for i, field := range fields {
		option, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			return fmt.Errorf("answer %d: %q is not a number", i+1, strings.TrimSpace(field))
		}
		if option < 1 || option > quiz.MaxOptionIndex+1 {
			return fmt.Errorf("answer %d: option %d out of range 1-%d", i+1, option, quiz.MaxOptionIndex+1)
		}
		if err := attempt.Select(i, option-1); err != nil {
			return err
		}
	}
	return nil
}
