package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"yt-clipper/internal/config"
	"yt-clipper/internal/locator"
)

func runProbe(args []string) error {
	fs := flag.NewFlagSet("probe", flag.ContinueOnError)
	source := fs.String("source", "", "source video or stream URL")
	configPath := fs.String("config", config.DefaultConfigPath, "tool config path")
	cookies := fs.String("cookies", "", "cookies file for restricted sources")
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*source) == "" {
		return fmt.Errorf("--source is required")
	}

	settings, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if strings.TrimSpace(*cookies) != "" {
		settings.CookiesPath = *cookies
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	resolver := &locator.YTDLPResolver{
		Bin:              settings.YTDLPBin,
		FFprobeBin:       settings.FFprobeBin,
		CookiesPath:      settings.CookiesPath,
		SocketTimeoutSec: settings.SocketTimeoutSec,
		Retries:          settings.ResolveRetries,
	}
	desc, err := resolver.Resolve(ctx, *source)
	if err != nil {
		return err
	}

	if *jsonOut {
		return printJSON(desc)
	}

	fmt.Printf("source: %s\n", desc.SourceID)
	if desc.Title != "" {
		fmt.Printf("title: %s\n", desc.Title)
	}
	if desc.Duration > 0 {
		fmt.Printf("duration: %s (%s s)\n", formatClock(desc.Duration), formatFloat(desc.Duration))
	}
	fmt.Println("endpoints:")
	for _, e := range desc.Endpoints {
		codec := e.Codec
		if codec == "" {
			codec = "unknown codec"
		}
		fmt.Printf("  %-6s %s\n", e.Kind, codec)
	}
	return nil
}
