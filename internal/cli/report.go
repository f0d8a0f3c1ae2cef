package cli

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"yt-clipper/internal/clip"
	"yt-clipper/internal/model"
)

func renderReportTable(report clip.Report) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "Clip", "Window", "Status", "Attempts", "Size"})

	for _, job := range report.Jobs {
		tw.AppendRow(table.Row{
			job.Index,
			job.Request.Title,
			fmt.Sprintf("%s - %s", formatClock(job.Request.Start), formatClock(job.Request.End)),
			statusCell(job),
			attemptsCell(job),
			sizeCell(job),
		})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})
	return tw.Render()
}

func statusCell(job model.ClipJob) string {
	if job.Status == model.StatusFailed && job.Reason != "" {
		return fmt.Sprintf("%s (%s)", job.Status, job.Reason)
	}
	return job.Status
}

func attemptsCell(job model.ClipJob) string {
	if job.Attempts == 0 {
		return "-"
	}
	return fmt.Sprintf("%d", job.Attempts)
}

func sizeCell(job model.ClipJob) string {
	if job.Status != model.StatusDone && job.Status != model.StatusCached {
		return "-"
	}
	info, err := os.Stat(job.OutputPath)
	if err != nil {
		return "-"
	}
	return formatBytesIEC(info.Size())
}

func summarizeReport(report clip.Report) string {
	return fmt.Sprintf("run %s: %d clips, %d done, %d cached, %d failed",
		report.RunID, report.Total, report.Done, report.Cached, report.Failed)
}
