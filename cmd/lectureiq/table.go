package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"lectureiq/internal/api"
)

// renderLectureTable renders lecture summaries with a colorized status
// column and right-aligned progress. The progress cell collapses to "-"
// once a lecture is terminal.
func renderLectureTable(lectures []api.Lecture, colorize bool) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"ID", "Title", "Status", "Progress", "Uploaded"})

	for _, lecture := range lectures {
		tw.AppendRow(table.Row{
			lecture.ID,
			lecture.Title,
			colorStatus(lecture.Status, colorize),
			progressCell(lecture),
			lecture.UploadedAt.Local().Format("2006-01-02 15:04"),
		})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}
