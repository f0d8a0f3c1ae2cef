package clip

import (
	"context"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"yt-clipper/internal/encoder"
	"yt-clipper/internal/ffmpeg"
	"yt-clipper/internal/locator"
	"yt-clipper/internal/model"
)

const (
	// DefaultSeekBuffer is the coarse/accurate seek split in seconds: a cheap
	// input seek lands this far before the clip start, and a second precise
	// seek covers the remainder for frame-accurate trimming.
	DefaultSeekBuffer = 5.0

	// DefaultEndPadding is added to every output duration so the final frames
	// survive container rounding.
	DefaultEndPadding = 0.15
)

// Extractor builds and runs one transcode command per clip job.
type Extractor struct {
	FFmpegBin  string // defaults to "ffmpeg"
	Monitor    *ffmpeg.Monitor
	SeekBuffer float64
	EndPadding float64
}

// BuildCommand assembles the transcode token list for one clip and returns it
// together with the planned output duration (the progress-scaling hint).
func (x *Extractor) BuildCommand(req model.ClipRequest, desc locator.MediaDescriptor, profile encoder.Profile, outputPath string) (ffmpeg.Command, float64, error) {
	if req.Start >= req.End {
		return ffmpeg.Command{}, 0, fmt.Errorf("build transcode command: start %.2f is not before end %.2f", req.Start, req.End)
	}
	inputs, separate, err := desc.Inputs()
	if err != nil {
		return ffmpeg.Command{}, 0, err
	}

	coarse := math.Max(0, req.Start-x.seekBuffer())
	accurate := math.Min(x.seekBuffer(), req.Start)
	planned := req.Duration() + x.endPadding()

	args := []string{"-hide_banner", "-nostdin"}
	for _, in := range inputs {
		args = append(args, "-ss", formatSeconds(coarse), "-i", in.URL)
	}
	args = append(args, "-ss", formatSeconds(accurate), "-t", formatSeconds(planned))
	if separate {
		args = append(args, "-map", "0:v:0", "-map", "1:a:0")
	}
	args = append(args, profile.Args...)
	args = append(args, "-y", outputPath)

	return ffmpeg.Command{Bin: x.bin(), Args: args}, planned, nil
}

// Extract runs the transcode and verifies the produced file. Success requires
// a zero exit status and an output above the minimum size threshold.
func (x *Extractor) Extract(ctx context.Context, req model.ClipRequest, desc locator.MediaDescriptor, profile encoder.Profile, outputPath string, onProgress func(ffmpeg.ProgressSample)) error {
	cmd, planned, err := x.BuildCommand(req, desc, profile, outputPath)
	if err != nil {
		return err
	}

	outcome := x.monitor().Run(ctx, cmd, planned, onProgress)
	if err := outcome.AsError(cmd.Bin); err != nil {
		return err
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return fmt.Errorf("verify clip output %s: %w", outputPath, err)
	}
	if info.Size() <= minCachedBytes {
		return fmt.Errorf("verify clip output %s: only %d bytes after a clean exit", outputPath, info.Size())
	}
	return nil
}

func (x *Extractor) bin() string {
	if strings.TrimSpace(x.FFmpegBin) != "" {
		return x.FFmpegBin
	}
	return "ffmpeg"
}

func (x *Extractor) monitor() *ffmpeg.Monitor {
	if x.Monitor != nil {
		return x.Monitor
	}
	return &ffmpeg.Monitor{}
}

func (x *Extractor) seekBuffer() float64 {
	if x.SeekBuffer > 0 {
		return x.SeekBuffer
	}
	return DefaultSeekBuffer
}

func (x *Extractor) endPadding() float64 {
	if x.EndPadding > 0 {
		return x.EndPadding
	}
	return DefaultEndPadding
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
