package cli

import "fmt"

func Run(args []string) error {
	if len(args) == 0 {
		printRootUsage()
		return nil
	}

	switch args[0] {
	case "extract":
		return runExtract(args[1:])
	case "plan":
		return runPlan(args[1:])
	case "probe":
		return runProbe(args[1:])
	case "doctor":
		return runDoctor(args[1:])
	case "settings":
		return runSettings(args[1:])
	case "help", "-h", "--help":
		printRootUsage()
		return nil
	default:
		printRootUsage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func printRootUsage() {
	fmt.Println("yt-clipper: batch clip extraction from online video sources")
	fmt.Println()
	fmt.Println("Quick Start:")
	fmt.Println("  yt-clipper doctor")
	fmt.Println("  yt-clipper extract --source <url> --clips clips.json --out ./clips")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  extract   resolve streams and transcode every requested clip")
	fmt.Println("  plan      show which clips are already on disk and which need work")
	fmt.Println("  probe     resolve a source URL and print its stream endpoints")
	fmt.Println("  doctor    run dependency and filesystem preflight checks")
	fmt.Println("  settings  show/update persisted tool settings")
	fmt.Println()
	fmt.Println("Notes:")
	fmt.Println("  - Use --json on commands for machine-readable output")
	fmt.Println("  - Clip manifests accept seconds or HH:MM:SS timestamps")
}
