package cli

import (
	"flag"
	"fmt"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"yt-clipper/internal/clip"
	"yt-clipper/internal/model"
)

func runPlan(args []string) error {
	fs := flag.NewFlagSet("plan", flag.ContinueOnError)
	clipsPath := fs.String("clips", "", "clip manifest path (JSON)")
	outDir := fs.String("out", "clips", "output directory")
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*clipsPath) == "" {
		return fmt.Errorf("--clips is required")
	}

	requests, err := readClipRequests(*clipsPath)
	if err != nil {
		return err
	}

	planner := &clip.Planner{OutputDir: *outDir}
	cached, pending, err := planner.Plan(requests)
	if err != nil {
		return err
	}

	if *jsonOut {
		return printJSON(map[string]any{
			"output_dir": *outDir,
			"cached":     cached,
			"pending":    pending,
		})
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "Clip", "Window", "Plan"})
	for _, job := range mergeJobs(cached, pending) {
		plan := "transcode"
		if job.Status == model.StatusCached {
			plan = "reuse " + job.OutputPath
		}
		tw.AppendRow(table.Row{
			job.Index,
			job.Request.Title,
			fmt.Sprintf("%s - %s", formatClock(job.Request.Start), formatClock(job.Request.End)),
			plan,
		})
	}
	fmt.Println(tw.Render())
	fmt.Printf("%d cached, %d to transcode\n", len(cached), len(pending))
	return nil
}

func mergeJobs(cached, pending []model.ClipJob) []model.ClipJob {
	jobs := make([]model.ClipJob, 0, len(cached)+len(pending))
	jobs = append(jobs, cached...)
	jobs = append(jobs, pending...)
	sort.Slice(jobs, func(a, b int) bool { return jobs[a].Index < jobs[b].Index })
	return jobs
}
