package ffmpeg

import (
	"fmt"
	"math"
	"strings"
)

// Every encode uses the same codec pair and pixel format so intermediate
// outputs stay mutually compatible across stages.
func codecArgs() []string {
	return []string{
		"-c:v", "libx264",
		"-c:a", "aac",
		"-pix_fmt", "yuv420p",
	}
}

func baseArgs() []string {
	return []string{"-y", "-hide_banner", "-loglevel", "error"}
}

// LinearGain converts a decibel adjustment into the linear factor the volume
// filter expects: 10^(dB/20).
func LinearGain(gainDB float64) float64 {
	return math.Pow(10, gainDB/20)
}

func extractAudioArgs(source, dest string) []string {
	args := baseArgs()
	args = append(args,
		"-i", source,
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		dest,
	)
	return args
}

func scaleArgs(source string, factor float64, dest string) []string {
	filter := fmt.Sprintf("[0:v]setpts=%.6f*PTS[v];[0:a]atempo=%.6f[a]", factor, 1/factor)
	args := baseArgs()
	args = append(args,
		"-i", source,
		"-filter_complex", filter,
		"-map", "[v]",
		"-map", "[a]",
	)
	args = append(args, codecArgs()...)
	return append(args, dest)
}

func mixArgs(video, music string, gainDB, durationSeconds float64, dest string) []string {
	filter := fmt.Sprintf(
		"[1:a]volume=%.4f[bg];[bg]atrim=duration=%.3f[bgt];[0:a][bgt]amix=inputs=2:duration=first:dropout_transition=0:normalize=0[mix]",
		LinearGain(gainDB), durationSeconds,
	)
	args := baseArgs()
	args = append(args,
		"-i", video,
		"-stream_loop", "-1",
		"-i", music,
		"-filter_complex", filter,
		"-map", "0:v",
		"-map", "[mix]",
		"-shortest",
	)
	args = append(args, codecArgs()...)
	return append(args, dest)
}

func overlayArgs(video, subtitleDoc, dest string) []string {
	args := baseArgs()
	args = append(args,
		"-i", video,
		"-vf", "subtitles="+escapeFilterPath(subtitleDoc),
	)
	args = append(args, codecArgs()...)
	return append(args, dest)
}

func concatArgs(first, second, dest string) []string {
	args := baseArgs()
	args = append(args,
		"-i", first,
		"-i", second,
		"-filter_complex", "[0:v][0:a][1:v][1:a]concat=n=2:v=1:a=1[v][a]",
		"-map", "[v]",
		"-map", "[a]",
	)
	args = append(args, codecArgs()...)
	return append(args, dest)
}

// escapeFilterPath escapes the characters the ffmpeg filter parser treats
// specially in filenames (backslashes, colons, quotes, commas).
func escapeFilterPath(path string) string {
	replacer := strings.NewReplacer(
		`\`, `/`,
		`:`, `\:`,
		`'`, `\'`,
		`,`, `\,`,
	)
	return replacer.Replace(path)
}
