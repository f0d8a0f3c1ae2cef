package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"yt-clipper/internal/clip"
	"yt-clipper/internal/config"
	"yt-clipper/internal/locator"
)

func runExtract(args []string) error {
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	source := fs.String("source", "", "source video or stream URL")
	clipsPath := fs.String("clips", "", "clip manifest path (JSON)")
	outDir := fs.String("out", "clips", "output directory")
	configPath := fs.String("config", config.DefaultConfigPath, "tool config path")
	workers := fs.Int("workers", 0, "parallel transcodes (0 uses config)")
	maxRetries := fs.Int("max-retries", 0, "attempts per clip on expired links (0 uses config)")
	timeoutSec := fs.Int("timeout-sec", -1, "per-clip timeout in seconds (-1 uses config, 0 disables)")
	cookies := fs.String("cookies", "", "cookies file for restricted sources")
	ffmpegBin := fs.String("ffmpeg", "", "ffmpeg binary override")
	ytdlpBin := fs.String("ytdlp", "", "yt-dlp binary override")
	jsonOut := fs.Bool("json", false, "print JSON output")
	noTUI := fs.Bool("no-tui", false, "plain line output instead of the progress display")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	if strings.TrimSpace(*source) == "" {
		return fmt.Errorf("--source is required")
	}
	if strings.TrimSpace(*clipsPath) == "" {
		return fmt.Errorf("--clips is required")
	}

	settings, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	settings = applyOverrides(settings, *ffmpegBin, *ytdlpBin, *cookies, *workers, *maxRetries, *timeoutSec)

	if err := locator.CheckDependencies(settings.YTDLPBin, settings.FFmpegBin); err != nil {
		return err
	}

	requests, err := readClipRequests(*clipsPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	resolver := locator.NewCache(&locator.YTDLPResolver{
		Bin:              settings.YTDLPBin,
		FFprobeBin:       settings.FFprobeBin,
		CookiesPath:      settings.CookiesPath,
		SocketTimeoutSec: settings.SocketTimeoutSec,
		Retries:          settings.ResolveRetries,
	})

	opts := clip.Options{
		SourceURL:  *source,
		OutputDir:  *outDir,
		Requests:   requests,
		Workers:    settings.Workers,
		MaxRetries: settings.MaxRetries,
		JobTimeout: time.Duration(settings.JobTimeoutSec) * time.Second,
		SeekBuffer: settings.SeekBufferSec,
		EndPadding: settings.EndPaddingSec,
		FFmpegBin:  settings.FFmpegBin,
		Locator:    resolver,
	}

	var report clip.Report
	if !*noTUI && !*jsonOut && stdoutIsTTY() {
		report, err = runExtractWithTUI(ctx, opts)
	} else {
		opts.Logf = func(format string, logArgs ...any) {
			fmt.Fprintf(os.Stderr, format+"\n", logArgs...)
		}
		report, err = clip.Run(ctx, opts)
	}
	if err != nil {
		return err
	}

	if *jsonOut {
		if err := printJSON(report); err != nil {
			return err
		}
	} else {
		fmt.Println(renderReportTable(report))
		fmt.Println(summarizeReport(report))
	}

	if report.Failed > 0 {
		return fmt.Errorf("%d of %d clips failed (see %s/logs)", report.Failed, report.Total, *outDir)
	}
	return nil
}

func applyOverrides(s config.Settings, ffmpegBin, ytdlpBin, cookies string, workers, maxRetries, timeoutSec int) config.Settings {
	if strings.TrimSpace(ffmpegBin) != "" {
		s.FFmpegBin = ffmpegBin
	}
	if strings.TrimSpace(ytdlpBin) != "" {
		s.YTDLPBin = ytdlpBin
	}
	if strings.TrimSpace(cookies) != "" {
		s.CookiesPath = cookies
	}
	if workers > 0 {
		s.Workers = workers
	}
	if maxRetries > 0 {
		s.MaxRetries = maxRetries
	}
	if timeoutSec >= 0 {
		s.JobTimeoutSec = timeoutSec
	}
	return config.Normalize(s)
}
