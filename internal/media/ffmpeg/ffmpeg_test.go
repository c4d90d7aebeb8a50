package ffmpeg

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestScaleArgsUseReciprocalTempo(t *testing.T) {
	args := scaleArgs("in.mp4", 1.25, "out.mp4")
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "setpts=1.250000*PTS") {
		t.Fatalf("expected setpts factor in args: %s", joined)
	}
	if !strings.Contains(joined, "atempo=0.800000") {
		t.Fatalf("expected atempo 1/factor in args: %s", joined)
	}
	if !strings.Contains(joined, "-c:v libx264") || !strings.Contains(joined, "-c:a aac") || !strings.Contains(joined, "-pix_fmt yuv420p") {
		t.Fatalf("expected fixed codec settings: %s", joined)
	}
}

func TestMixArgsApplyGainTrimAndAdditiveMix(t *testing.T) {
	args := mixArgs("video.mp4", "music.mp3", -15.0, 12.5, "out.mp4")
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "volume=0.1778") {
		t.Fatalf("expected linear gain 10^(-15/20) in args: %s", joined)
	}
	if !strings.Contains(joined, "atrim=duration=12.500") {
		t.Fatalf("expected music trimmed to video duration: %s", joined)
	}
	if !strings.Contains(joined, "amix=inputs=2:duration=first:dropout_transition=0:normalize=0") {
		t.Fatalf("expected additive mix without renormalization: %s", joined)
	}
	loopIdx := slices.Index(args, "-stream_loop")
	if loopIdx < 0 || args[loopIdx+1] != "-1" {
		t.Fatalf("expected infinite music loop: %s", joined)
	}
	musicIdx := slices.Index(args, "music.mp3")
	if musicIdx < loopIdx {
		t.Fatalf("-stream_loop must precede the music input: %s", joined)
	}
}

func TestLinearGain(t *testing.T) {
	if got := LinearGain(0); got != 1 {
		t.Fatalf("expected unity gain at 0 dB, got %v", got)
	}
	if got := LinearGain(-20); math.Abs(got-0.1) > 1e-9 {
		t.Fatalf("expected 0.1 at -20 dB, got %v", got)
	}
}

func TestExtractAudioArgs(t *testing.T) {
	args := extractAudioArgs("clip.mkv", "clip.wav")
	joined := strings.Join(args, " ")
	for _, want := range []string{"-ac 1", "-ar 16000", "-c:a pcm_s16le", "-vn"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected %q in extract args: %s", want, joined)
		}
	}
}

func TestConcatArgs(t *testing.T) {
	args := concatArgs("main.mp4", "outro.mp4", "final.mp4")
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "concat=n=2:v=1:a=1") {
		t.Fatalf("expected concat filter: %s", joined)
	}
	if slices.Index(args, "main.mp4") > slices.Index(args, "outro.mp4") {
		t.Fatalf("main input must precede outro: %s", joined)
	}
}

func TestEscapeFilterPath(t *testing.T) {
	got := escapeFilterPath(`C:\videos\it's here, now.ass`)
	if strings.ContainsRune(got, '\\') && !strings.Contains(got, `\:`) {
		t.Fatalf("unexpected escaping: %q", got)
	}
	if !strings.Contains(got, `\'`) || !strings.Contains(got, `\,`) {
		t.Fatalf("expected quote and comma escapes: %q", got)
	}
}

func TestWriteAtomicRenamesOnSuccess(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "out.mp4")

	tr := New("")
	tr.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		// The last argument is the temp output path.
		return os.WriteFile(args[len(args)-1], []byte("encoded"), 0o644)
	})

	if err := tr.ScaleTimestamps(context.Background(), "in.mp4", dest, 1.25); err != nil {
		t.Fatalf("ScaleTimestamps returned error: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("expected destination to exist: %v", err)
	}
	if string(data) != "encoded" {
		t.Fatalf("unexpected destination content: %q", string(data))
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected temp file cleaned up, found %d entries", len(entries))
	}
}

func TestWriteAtomicLeavesDestinationOnFailure(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "out.mp4")
	if err := os.WriteFile(dest, []byte("previous"), 0o644); err != nil {
		t.Fatalf("seed destination: %v", err)
	}

	tr := New("")
	tr.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		// Simulate a partial write before the failure.
		_ = os.WriteFile(args[len(args)-1], []byte("partial"), 0o644)
		return errors.New("encoder exploded")
	})

	if err := tr.MixAudio(context.Background(), "v.mp4", "m.mp3", -15, 10, dest); err == nil {
		t.Fatal("expected error from failing runner")
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("destination should survive: %v", err)
	}
	if string(data) != "previous" {
		t.Fatalf("destination was clobbered: %q", string(data))
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("expected temp file removed after failure, found %d entries", len(entries))
	}
}

func TestInvalidInputsRejectedWithoutRunning(t *testing.T) {
	tr := New("")
	ran := false
	tr.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		ran = true
		return nil
	})
	if err := tr.ScaleTimestamps(context.Background(), "a", "b", 0); err == nil {
		t.Fatal("expected error for zero factor")
	}
	if err := tr.MixAudio(context.Background(), "a", "b", -15, 0, "c"); err == nil {
		t.Fatal("expected error for zero duration")
	}
	if ran {
		t.Fatal("runner must not execute for invalid inputs")
	}
}
