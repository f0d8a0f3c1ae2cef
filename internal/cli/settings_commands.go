package cli

import (
	"errors"
	"flag"
	"fmt"
	"strings"

	"yt-clipper/internal/config"
)

func runSettings(args []string) error {
	if len(args) == 0 {
		printSettingsUsage()
		return nil
	}
	switch args[0] {
	case "show":
		return runSettingsShow(args[1:])
	case "set":
		return runSettingsSet(args[1:])
	case "help", "-h", "--help":
		printSettingsUsage()
		return nil
	default:
		printSettingsUsage()
		return fmt.Errorf("unknown settings subcommand %q", args[0])
	}
}

func runSettingsShow(args []string) error {
	fs := flag.NewFlagSet("settings show", flag.ContinueOnError)
	configPath := fs.String("config", config.DefaultConfigPath, "tool config path")
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	settings, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(map[string]any{
			"config_path": strings.TrimSpace(*configPath),
			"settings":    settings,
		})
	}

	fmt.Printf("config: %s\n", strings.TrimSpace(*configPath))
	fmt.Printf("ffmpeg_bin: %s\n", settings.FFmpegBin)
	fmt.Printf("ffprobe_bin: %s\n", settings.FFprobeBin)
	fmt.Printf("ytdlp_bin: %s\n", settings.YTDLPBin)
	if settings.CookiesPath != "" {
		fmt.Printf("cookies_path: %s\n", settings.CookiesPath)
	}
	fmt.Printf("workers: %d\n", settings.Workers)
	fmt.Printf("max_retries: %d\n", settings.MaxRetries)
	fmt.Printf("job_timeout_sec: %d\n", settings.JobTimeoutSec)
	fmt.Printf("seek_buffer_sec: %s\n", formatFloat(settings.SeekBufferSec))
	fmt.Printf("end_padding_sec: %s\n", formatFloat(settings.EndPaddingSec))
	fmt.Printf("socket_timeout_sec: %d\n", settings.SocketTimeoutSec)
	fmt.Printf("resolve_retries: %d\n", settings.ResolveRetries)
	return nil
}

func runSettingsSet(args []string) error {
	fs := flag.NewFlagSet("settings set", flag.ContinueOnError)
	configPath := fs.String("config", config.DefaultConfigPath, "tool config path")
	ffmpegBin := fs.String("ffmpeg", "", "ffmpeg binary (empty keeps current)")
	ffprobeBin := fs.String("ffprobe", "", "ffprobe binary (empty keeps current)")
	ytdlpBin := fs.String("ytdlp", "", "yt-dlp binary (empty keeps current)")
	cookies := fs.String("cookies", "", "cookies file path (empty keeps current, 'none' clears)")
	workers := fs.Int("workers", -1, "parallel transcodes (>=1, -1 keeps current)")
	maxRetries := fs.Int("max-retries", -1, "attempts per clip on expired links (>=1, -1 keeps current)")
	timeoutSec := fs.Int("timeout-sec", -1, "per-clip timeout in seconds (0 disables, -1 keeps current)")
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	settings, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	if strings.TrimSpace(*ffmpegBin) != "" {
		settings.FFmpegBin = strings.TrimSpace(*ffmpegBin)
	}
	if strings.TrimSpace(*ffprobeBin) != "" {
		settings.FFprobeBin = strings.TrimSpace(*ffprobeBin)
	}
	if strings.TrimSpace(*ytdlpBin) != "" {
		settings.YTDLPBin = strings.TrimSpace(*ytdlpBin)
	}
	switch strings.TrimSpace(*cookies) {
	case "":
	case "none":
		settings.CookiesPath = ""
	default:
		settings.CookiesPath = strings.TrimSpace(*cookies)
	}
	if *workers != -1 {
		if *workers <= 0 {
			return errors.New("--workers must be >= 1")
		}
		settings.Workers = *workers
	}
	if *maxRetries != -1 {
		if *maxRetries <= 0 {
			return errors.New("--max-retries must be >= 1")
		}
		settings.MaxRetries = *maxRetries
	}
	if *timeoutSec != -1 {
		if *timeoutSec < 0 {
			return errors.New("--timeout-sec must be >= 0")
		}
		settings.JobTimeoutSec = *timeoutSec
	}

	saved, err := config.Save(*configPath, settings)
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(map[string]any{
			"config_path": strings.TrimSpace(*configPath),
			"settings":    saved,
		})
	}
	fmt.Printf("updated settings in %s\n", strings.TrimSpace(*configPath))
	return nil
}

func printSettingsUsage() {
	fmt.Println("settings commands:")
	fmt.Println("  settings show")
	fmt.Println("  settings set [--ffmpeg BIN] [--ytdlp BIN] [--cookies PATH|none]")
	fmt.Println("               [--workers N] [--max-retries N] [--timeout-sec N]")
}
