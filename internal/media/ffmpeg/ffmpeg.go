package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"kielo/internal/fileutil"
)

// DefaultBinary is the ffmpeg executable resolved from PATH.
const DefaultBinary = "ffmpeg"

// Transcoder executes ffmpeg operations with deterministic codec settings.
type Transcoder struct {
	binary string
	runner func(ctx context.Context, name string, args ...string) error
}

// New creates a transcoder using the given ffmpeg binary.
func New(binary string) *Transcoder {
	if strings.TrimSpace(binary) == "" {
		binary = DefaultBinary
	}
	return &Transcoder{binary: binary}
}

// WithCommandRunner sets a custom command runner (for testing).
func (t *Transcoder) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	t.runner = runner
}

func (t *Transcoder) run(ctx context.Context, args ...string) error {
	if t.runner != nil {
		return t.runner(ctx, t.binary, args...)
	}
	cmd := exec.CommandContext(ctx, t.binary, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", t.binary, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// writeAtomic runs an ffmpeg invocation that writes to a temporary sibling of
// dest and renames it into place on success. On failure the temp file is
// removed and dest is left untouched.
func (t *Transcoder) writeAtomic(ctx context.Context, dest string, buildArgs func(tmp string) []string) error {
	tmp := fileutil.TempSibling(dest)
	if err := t.run(ctx, buildArgs(tmp)...); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dest)
}

// ExtractAudio writes the source's audio as a mono 16kHz signed 16-bit PCM
// WAV file at dest.
func (t *Transcoder) ExtractAudio(ctx context.Context, source, dest string) error {
	if err := t.writeAtomic(ctx, dest, func(tmp string) []string {
		return extractAudioArgs(source, tmp)
	}); err != nil {
		return fmt.Errorf("extract audio: %w", err)
	}
	return nil
}

// ScaleTimestamps multiplies video presentation timestamps by factor and
// applies the reciprocal audio tempo in a single combined encode.
func (t *Transcoder) ScaleTimestamps(ctx context.Context, source, dest string, factor float64) error {
	if factor <= 0 {
		return fmt.Errorf("scale timestamps: invalid factor %v", factor)
	}
	if err := t.writeAtomic(ctx, dest, func(tmp string) []string {
		return scaleArgs(source, factor, tmp)
	}); err != nil {
		return fmt.Errorf("scale timestamps: %w", err)
	}
	return nil
}

// MixAudio mixes an indefinitely looped music track (gain-adjusted and
// trimmed to durationSeconds) with the video's original audio. The mix is
// additive without level renormalization and stops at the shorter stream.
func (t *Transcoder) MixAudio(ctx context.Context, video, music string, gainDB, durationSeconds float64, dest string) error {
	if durationSeconds <= 0 {
		return fmt.Errorf("mix audio: invalid duration %v", durationSeconds)
	}
	if err := t.writeAtomic(ctx, dest, func(tmp string) []string {
		return mixArgs(video, music, gainDB, durationSeconds, tmp)
	}); err != nil {
		return fmt.Errorf("mix audio: %w", err)
	}
	return nil
}

// OverlaySubtitles burns the subtitle document into the video stream.
func (t *Transcoder) OverlaySubtitles(ctx context.Context, video, subtitleDoc, dest string) error {
	if err := t.writeAtomic(ctx, dest, func(tmp string) []string {
		return overlayArgs(video, subtitleDoc, tmp)
	}); err != nil {
		return fmt.Errorf("overlay subtitles: %w", err)
	}
	return nil
}

// Concatenate joins two (video, audio) stream pairs sequentially into a
// single video and audio track.
func (t *Transcoder) Concatenate(ctx context.Context, first, second, dest string) error {
	if err := t.writeAtomic(ctx, dest, func(tmp string) []string {
		return concatArgs(first, second, tmp)
	}); err != nil {
		return fmt.Errorf("concatenate: %w", err)
	}
	return nil
}
