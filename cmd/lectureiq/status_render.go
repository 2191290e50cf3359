package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"lectureiq/internal/api"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

var titleCaser = cases.Title(language.English)

// statusLabel renders a wire status for display. Unknown statuses pass
// through title-cased rather than failing.
func statusLabel(status api.Status) string {
	return titleCaser.String(strings.ReplaceAll(string(status), "_", " "))
}

func statusColor(status api.Status) string {
	switch status {
	case api.StatusCompleted:
		return ansiGreen
	case api.StatusFailed:
		return ansiRed
	case api.StatusProcessing:
		return ansiYellow
	case api.StatusUploading:
		return ansiBlue
	default:
		return ""
	}
}

func colorStatus(status api.Status, colorize bool) string {
	label := statusLabel(status)
	if !colorize {
		return label
	}
	color := statusColor(status)
	if color == "" {
		return label
	}
	return color + label + ansiReset
}

// renderLectureProgress formats one polling snapshot as a single line.
func renderLectureProgress(detail *api.LectureDetail, colorize bool) string {
	label := colorStatus(detail.Status, colorize)
	switch {
	case detail.Status == api.StatusFailed && detail.ErrorMessage != "":
		return fmt.Sprintf("%-12s %s", label, detail.ErrorMessage)
	case detail.Status.IsTerminal():
		return label
	default:
		return fmt.Sprintf("%-12s %3d%%", label, detail.Progress)
	}
}

// renderLectureDetail prints the lecture record and whichever study sections
// are available. section narrows output to one of notes, flashcards, quiz,
// or resources.
func renderLectureDetail(out io.Writer, detail *api.LectureDetail, section string, colorize bool) error {
	section = strings.ToLower(strings.TrimSpace(section))
	all := section == ""

	if all {
		fmt.Fprintf(out, "%s\n", detail.Title)
		fmt.Fprintf(out, "  ID:       %s\n", detail.ID)
		fmt.Fprintf(out, "  Status:   %s\n", colorStatus(detail.Status, colorize))
		if detail.Status.Active() {
			fmt.Fprintf(out, "  Progress: %d%%\n", detail.Progress)
		}
		if detail.Duration != nil {
			fmt.Fprintf(out, "  Duration: %s\n", formatTimestamp(float64(*detail.Duration)))
		}
		fmt.Fprintf(out, "  Uploaded: %s\n", detail.UploadedAt.Local().Format("2006-01-02 15:04"))
		if detail.ErrorMessage != "" {
			fmt.Fprintf(out, "  Error:    %s\n", detail.ErrorMessage)
		}
		if detail.Status.Active() {
			fmt.Fprintf(out, "\nProcessing is not finished; study material appears once the lecture completes.\n")
			return nil
		}
	}

	switch section {
	case "", "notes":
		if detail.Notes != "" {
			fmt.Fprintf(out, "\n== Notes ==\n%s\n", detail.Notes)
		} else if !all {
			fmt.Fprintln(out, "No notes")
		}
		if len(detail.KeyConcepts) > 0 {
			fmt.Fprintf(out, "\nKey concepts: %s\n", strings.Join(detail.KeyConcepts, ", "))
		}
		if !all {
			return nil
		}
	case "flashcards":
	case "quiz":
	case "resources":
	default:
		return fmt.Errorf("unknown section %q (expected notes, flashcards, quiz, or resources)", section)
	}

	if all || section == "flashcards" {
		if len(detail.Flashcards) > 0 {
			fmt.Fprintf(out, "\n== Flashcards (%d) ==\n", len(detail.Flashcards))
			for i, card := range detail.Flashcards {
				fmt.Fprintf(out, "%2d. Q: %s\n    A: %s\n", i+1, card.Question, card.Answer)
			}
		} else if !all {
			fmt.Fprintln(out, "No flashcards")
		}
	}

	if all || section == "quiz" {
		if len(detail.MCQs) > 0 {
			fmt.Fprintf(out, "\n== Quiz (%d questions) ==\n", len(detail.MCQs))
			for i, mcq := range detail.MCQs {
				fmt.Fprintf(out, "%2d. %s\n", i+1, mcq.Question)
				for j, option := range mcq.Options {
					fmt.Fprintf(out, "    %d) %s\n", j+1, option)
				}
			}
			fmt.Fprintf(out, "Answer with `lectureiq quiz %s --answers ...`\n", detail.ID)
		} else if !all {
			fmt.Fprintln(out, "No quiz questions")
		}
	}

	if all || section == "resources" {
		if len(detail.Resources) > 0 {
			fmt.Fprintf(out, "\n== Resources (%d) ==\n", len(detail.Resources))
			for _, resource := range detail.Resources {
				fmt.Fprintf(out, "  [%s] %s\n      %s\n", resource.Type, resource.Title, resource.URL)
			}
		} else if !all {
			fmt.Fprintln(out, "No resources")
		}
	}

	return nil
}

// useColor reports whether ANSI escapes should be emitted for the writer.
func useColor(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
