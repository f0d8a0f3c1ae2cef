package locator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Resolver produces stream endpoints for a source URL. Invalidate drops any
// cached state so the next Resolve performs a fresh resolution.
type Resolver interface {
	Resolve(ctx context.Context, source string) (MediaDescriptor, error)
	Invalidate(source string)
}

// YTDLPResolver resolves stream endpoints by dumping source metadata through
// yt-dlp. It holds no cache itself; wrap it in a Cache for reuse.
type YTDLPResolver struct {
	Bin              string // defaults to "yt-dlp"
	FFprobeBin       string // optional duration fallback, defaults to "ffprobe"
	CookiesPath      string
	SocketTimeoutSec int
	Retries          int
	Logf             func(format string, args ...any)
}

type ytdlpFormat struct {
	URL    string `json:"url"`
	VCodec string `json:"vcodec"`
	ACodec string `json:"acodec"`
}

type ytdlpInfo struct {
	ID               string        `json:"id"`
	Title            string        `json:"title"`
	Duration         float64       `json:"duration"`
	URL              string        `json:"url"`
	VCodec           string        `json:"vcodec"`
	ACodec           string        `json:"acodec"`
	RequestedFormats []ytdlpFormat `json:"requested_formats"`
}

func (r *YTDLPResolver) Resolve(ctx context.Context, source string) (MediaDescriptor, error) {
	if strings.TrimSpace(source) == "" {
		return MediaDescriptor{}, &ResolutionError{Source: source, Reason: "source URL is required"}
	}

	args := []string{"-J", "--no-playlist", "-f", "bestvideo+bestaudio/best"}
	if r.SocketTimeoutSec > 0 {
		args = append(args, "--socket-timeout", fmt.Sprintf("%d", r.SocketTimeoutSec))
	}
	if r.Retries > 0 {
		args = append(args, "--retries", fmt.Sprintf("%d", r.Retries))
	}
	if strings.TrimSpace(r.CookiesPath) != "" {
		cookiesPath, err := resolveCookiesPath(r.CookiesPath)
		if err != nil {
			return MediaDescriptor{}, &ResolutionError{Source: source, Reason: "bad cookies path", Err: err}
		}
		args = append(args, "--cookies", cookiesPath)
	}
	args = append(args, source)

	cmd := exec.CommandContext(ctx, r.bin(), args...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return MediaDescriptor{}, &ResolutionError{
			Source: source,
			Reason: fmt.Sprintf("yt-dlp failed: %s", strings.TrimSpace(stderr.String())),
			Err:    err,
		}
	}

	var info ytdlpInfo
	if err := json.Unmarshal(stdout.Bytes(), &info); err != nil {
		return MediaDescriptor{}, &ResolutionError{Source: source, Reason: "unparseable yt-dlp output", Err: err}
	}

	desc, err := descriptorFromInfo(source, info)
	if err != nil {
		return MediaDescriptor{}, err
	}
	if desc.Duration <= 0 {
		desc.Duration = r.probeDuration(ctx, desc)
	}
	return desc, nil
}

// Invalidate is a no-op: the resolver holds no state. Caching lives in Cache.
func (r *YTDLPResolver) Invalidate(string) {}

// descriptorFromInfo applies the endpoint selection rule: prefer a separate
// video+audio pair from requested_formats, fall back to a single muxed URL.
func descriptorFromInfo(source string, info ytdlpInfo) (MediaDescriptor, error) {
	desc := MediaDescriptor{
		SourceID: firstNonEmpty(info.ID, source),
		Title:    info.Title,
		Duration: info.Duration,
	}

	var video, audio *StreamEndpoint
	for _, f := range info.RequestedFormats {
		if f.URL == "" {
			continue
		}
		if video == nil && usableCodec(f.VCodec) {
			video = &StreamEndpoint{Kind: KindVideo, URL: f.URL, Codec: f.VCodec}
		}
		if audio == nil && usableCodec(f.ACodec) {
			audio = &StreamEndpoint{Kind: KindAudio, URL: f.URL, Codec: f.ACodec}
		}
	}
	if video != nil && audio != nil && video.URL != audio.URL {
		desc.Endpoints = []StreamEndpoint{*video, *audio}
		return desc, nil
	}

	if info.URL != "" {
		desc.Endpoints = []StreamEndpoint{{Kind: KindMuxed, URL: info.URL, Codec: info.VCodec}}
		return desc, nil
	}
	if video != nil {
		kind := KindVideo
		if audio != nil {
			// Same URL carried both streams.
			kind = KindMuxed
		}
		desc.Endpoints = []StreamEndpoint{{Kind: kind, URL: video.URL, Codec: video.Codec}}
		return desc, nil
	}

	return MediaDescriptor{}, &ResolutionError{Source: source, Reason: "metadata contains no stream URL"}
}

// probeDuration asks ffprobe for the container duration when yt-dlp did not
// report one. Best effort: progress simply degrades to unknown-total on error.
func (r *YTDLPResolver) probeDuration(ctx context.Context, desc MediaDescriptor) float64 {
	inputs, _, err := desc.Inputs()
	if err != nil || len(inputs) == 0 {
		return 0
	}
	dur, err := ProbeDuration(ctx, r.ffprobeBin(), inputs[0].URL)
	if err != nil {
		r.logf("duration probe failed for %s: %v", desc.SourceID, err)
		return 0
	}
	return dur
}

func (r *YTDLPResolver) bin() string {
	if strings.TrimSpace(r.Bin) != "" {
		return r.Bin
	}
	return "yt-dlp"
}

func (r *YTDLPResolver) ffprobeBin() string {
	if strings.TrimSpace(r.FFprobeBin) != "" {
		return r.FFprobeBin
	}
	return "ffprobe"
}

func (r *YTDLPResolver) logf(format string, args ...any) {
	if r.Logf != nil {
		r.Logf(format, args...)
	}
}

func usableCodec(codec string) bool {
	return codec != "" && codec != "none"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func resolveCookiesPath(path string) (string, error) {
	p := strings.TrimSpace(path)
	if p == "" {
		return "", nil
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolve cookies path %s: %w", p, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return "", fmt.Errorf("cookies file %s: %w", abs, err)
	}
	return abs, nil
}
