package encoder

// Profile is the ordered transcode argument set for one encoding backend.
type Profile struct {
	Label string
	Args  []string
}

// backend couples a probe codec with the arguments used once the probe
// succeeds. The list below is a priority order, not a hierarchy: new backends
// are appended without touching existing entries.
type backend struct {
	label string
	codec string // empty means no probe, always succeeds
	args  []string
}

// Constant frame rate base keeps frame intervals rigid across backends.
var baseArgs = []string{"-r", "30", "-fps_mode", "cfr"}

// Shared audio tail: AAC, fixed sample rate, strip source metadata.
var audioArgs = []string{"-c:a", "aac", "-ar", "44100", "-map_metadata", "-1"}

var backends = []backend{
	{
		label: "NVIDIA NVENC",
		codec: "h264_nvenc",
		args:  []string{"-c:v", "h264_nvenc", "-preset", "p4", "-cq", "23", "-rc", "vbr", "-pix_fmt", "yuv420p"},
	},
	{
		label: "Intel QuickSync",
		codec: "h264_qsv",
		args:  []string{"-c:v", "h264_qsv", "-global_quality", "23", "-preset", "veryslow", "-pix_fmt", "nv12"},
	},
	{
		label: "AMD AMF",
		codec: "h264_amf",
		args:  []string{"-c:v", "h264_amf", "-quality", "balanced", "-rc", "vbr_peak", "-pix_fmt", "yuv420p"},
	},
	{
		label: "Apple VideoToolbox",
		codec: "h264_videotoolbox",
		args:  []string{"-c:v", "h264_videotoolbox", "-q:v", "55", "-pix_fmt", "yuv420p"},
	},
	{
		label: "CPU libx264",
		codec: "",
		args:  []string{"-c:v", "libx264", "-preset", "medium"},
	},
}

func buildProfile(b backend) Profile {
	args := make([]string, 0, len(baseArgs)+len(b.args)+len(audioArgs))
	args = append(args, baseArgs...)
	args = append(args, b.args...)
	args = append(args, audioArgs...)
	return Profile{Label: b.label, Args: args}
}
