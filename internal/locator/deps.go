package locator

import (
	"fmt"
	"os/exec"
)

// DependencyReport lists the external binaries the pipeline shells out to.
type DependencyReport struct {
	YTDLPFound   bool   `json:"ytdlp_found"`
	YTDLPPath    string `json:"ytdlp_path,omitempty"`
	FFmpegFound  bool   `json:"ffmpeg_found"`
	FFmpegPath   string `json:"ffmpeg_path,omitempty"`
	FFprobeFound bool   `json:"ffprobe_found"`
	FFprobePath  string `json:"ffprobe_path,omitempty"`
}

func DependencyStatus(ytdlpBin, ffmpegBin, ffprobeBin string) DependencyReport {
	report := DependencyReport{}
	if path, err := exec.LookPath(orDefault(ytdlpBin, "yt-dlp")); err == nil {
		report.YTDLPFound = true
		report.YTDLPPath = path
	}
	if path, err := exec.LookPath(orDefault(ffmpegBin, "ffmpeg")); err == nil {
		report.FFmpegFound = true
		report.FFmpegPath = path
	}
	if path, err := exec.LookPath(orDefault(ffprobeBin, "ffprobe")); err == nil {
		report.FFprobeFound = true
		report.FFprobePath = path
	}
	return report
}

func CheckDependencies(ytdlpBin, ffmpegBin string) error {
	report := DependencyStatus(ytdlpBin, ffmpegBin, "")
	if !report.YTDLPFound {
		return fmt.Errorf("missing dependency: yt-dlp is not installed or not on PATH")
	}
	if !report.FFmpegFound {
		return fmt.Errorf("missing dependency: ffmpeg is required for transcoding and was not found on PATH")
	}
	return nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
