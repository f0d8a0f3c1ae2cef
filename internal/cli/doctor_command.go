package cli

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"yt-clipper/internal/config"
	"yt-clipper/internal/locator"
	"yt-clipper/internal/runstore"
)

type doctorCheck struct {
	Name    string `json:"name"`
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

type doctorResult struct {
	OK     bool          `json:"ok"`
	Checks []doctorCheck `json:"checks"`
}

func runDoctor(args []string) error {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	outDir := fs.String("out", "clips", "output directory")
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

	dep := locator.DependencyStatus(settings.YTDLPBin, settings.FFmpegBin, settings.FFprobeBin)
	checks := []doctorCheck{
		{Name: "dependency:yt-dlp", OK: dep.YTDLPFound, Message: dependencyMessage(dep.YTDLPFound, dep.YTDLPPath, settings.YTDLPBin)},
		{Name: "dependency:ffmpeg", OK: dep.FFmpegFound, Message: dependencyMessage(dep.FFmpegFound, dep.FFmpegPath, settings.FFmpegBin)},
		{Name: "dependency:ffprobe", OK: dep.FFprobeFound, Message: dependencyMessage(dep.FFprobeFound, dep.FFprobePath, settings.FFprobeBin)},
	}

	outOK, outMessage := ensureWritableDir(*outDir)
	checks = append(checks, doctorCheck{Name: "directory:out", OK: outOK, Message: outMessage})

	cfgOK, cfgMessage := ensureWritableDir(filepath.Dir(*configPath))
	checks = append(checks, doctorCheck{Name: "directory:config", OK: cfgOK, Message: cfgMessage})

	result := doctorResult{OK: true, Checks: checks}
	for _, c := range checks {
		if !c.OK {
			result.OK = false
			break
		}
	}

	if *jsonOut {
		if err := printJSON(result); err != nil {
			return err
		}
	} else {
		for _, c := range checks {
			mark := "ok"
			if !c.OK {
				mark = "FAIL"
			}
			fmt.Printf("%-20s %-4s %s\n", c.Name, mark, c.Message)
		}
	}

	if !result.OK {
		return fmt.Errorf("doctor found problems")
	}
	return nil
}

func dependencyMessage(ok bool, path, name string) string {
	if ok {
		return name + " found at " + path
	}
	return name + " not found on PATH"
}

func ensureWritableDir(path string) (bool, string) {
	if strings.TrimSpace(path) == "" {
		return false, "empty path"
	}
	if err := runstore.Mkdir(path); err != nil {
		return false, err.Error()
	}
	f, err := os.CreateTemp(path, "yt-clipper-check-*.tmp")
	if err != nil {
		return false, err.Error()
	}
	_ = f.Close()
	_ = os.Remove(f.Name())
	return true, "writable"
}
