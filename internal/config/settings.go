package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"yt-clipper/internal/clip"
	"yt-clipper/internal/runstore"
)

const (
	// DefaultConfigPath keeps the tool configuration next to the working
	// directory rather than in a hidden home-dir dotfile.
	DefaultConfigPath = "config/clipper.json"

	settingsSchemaVersion = 1

	DefaultWorkers          = 1
	DefaultFFmpegBin        = "ffmpeg"
	DefaultFFprobeBin       = "ffprobe"
	DefaultYTDLPBin         = "yt-dlp"
	DefaultSocketTimeoutSec = 30
	DefaultResolveRetries   = 3
	DefaultJobTimeoutSec    = 0 // no per-job timeout unless asked for
)

// Settings is the persisted tool configuration. Zero values mean "use the
// default"; Normalize resolves them before use.
type Settings struct {
	SchemaVersion int    `json:"schema_version"`
	UpdatedAt     string `json:"updated_at,omitempty"`

	FFmpegBin  string `json:"ffmpeg_bin,omitempty"`
	FFprobeBin string `json:"ffprobe_bin,omitempty"`
	YTDLPBin   string `json:"ytdlp_bin,omitempty"`

	CookiesPath      string `json:"cookies_path,omitempty"`
	SocketTimeoutSec int    `json:"socket_timeout_sec,omitempty"`
	ResolveRetries   int    `json:"resolve_retries,omitempty"`

	Workers       int     `json:"workers,omitempty"`
	MaxRetries    int     `json:"max_retries,omitempty"`
	JobTimeoutSec int     `json:"job_timeout_sec,omitempty"`
	SeekBufferSec float64 `json:"seek_buffer_sec,omitempty"`
	EndPaddingSec float64 `json:"end_padding_sec,omitempty"`
}

func Default() Settings {
	return Settings{
		SchemaVersion:    settingsSchemaVersion,
		FFmpegBin:        DefaultFFmpegBin,
		FFprobeBin:       DefaultFFprobeBin,
		YTDLPBin:         DefaultYTDLPBin,
		SocketTimeoutSec: DefaultSocketTimeoutSec,
		ResolveRetries:   DefaultResolveRetries,
		Workers:          DefaultWorkers,
		MaxRetries:       clip.DefaultMaxRetries,
		JobTimeoutSec:    DefaultJobTimeoutSec,
		SeekBufferSec:    clip.DefaultSeekBuffer,
		EndPaddingSec:    clip.DefaultEndPadding,
	}
}

// Normalize fills in defaults for unset or out-of-range fields.
func Normalize(raw Settings) Settings {
	norm := raw
	norm.SchemaVersion = settingsSchemaVersion
	if strings.TrimSpace(norm.FFmpegBin) == "" {
		norm.FFmpegBin = DefaultFFmpegBin
	}
	if strings.TrimSpace(norm.FFprobeBin) == "" {
		norm.FFprobeBin = DefaultFFprobeBin
	}
	if strings.TrimSpace(norm.YTDLPBin) == "" {
		norm.YTDLPBin = DefaultYTDLPBin
	}
	norm.CookiesPath = strings.TrimSpace(norm.CookiesPath)
	if norm.SocketTimeoutSec <= 0 {
		norm.SocketTimeoutSec = DefaultSocketTimeoutSec
	}
	if norm.ResolveRetries <= 0 {
		norm.ResolveRetries = DefaultResolveRetries
	}
	if norm.Workers <= 0 {
		norm.Workers = DefaultWorkers
	}
	if norm.MaxRetries <= 0 {
		norm.MaxRetries = clip.DefaultMaxRetries
	}
	if norm.JobTimeoutSec < 0 {
		norm.JobTimeoutSec = DefaultJobTimeoutSec
	}
	if norm.SeekBufferSec <= 0 {
		norm.SeekBufferSec = clip.DefaultSeekBuffer
	}
	if norm.EndPaddingSec <= 0 {
		norm.EndPaddingSec = clip.DefaultEndPadding
	}
	return norm
}

func normalizePath(path string) string {
	p := strings.TrimSpace(path)
	if p == "" {
		return DefaultConfigPath
	}
	return p
}

// Load reads the settings file, falling back to defaults when it does not
// exist yet. Any other read or parse failure is surfaced.
func Load(configPath string) (Settings, error) {
	path := normalizePath(configPath)
	var s Settings
	if err := runstore.ReadJSON(path, &s); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Settings{}, err
	}
	if s.SchemaVersion > settingsSchemaVersion {
		return Settings{}, fmt.Errorf("config %s has schema version %d, this build understands up to %d", path, s.SchemaVersion, settingsSchemaVersion)
	}
	return Normalize(s), nil
}

// Save normalizes and persists settings atomically.
func Save(configPath string, s Settings) (Settings, error) {
	path := normalizePath(configPath)
	norm := Normalize(s)
	norm.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	if err := runstore.WriteJSON(path, norm); err != nil {
		return Settings{}, err
	}
	return norm, nil
}
