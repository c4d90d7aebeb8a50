package whisper

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func writeTranscript(t *testing.T, path string, payload map[string]any) {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write payload: %v", err)
	}
}

func TestTranscribeParsesRunnerOutput(t *testing.T) {
	dir := t.TempDir()
	audio := filepath.Join(dir, "clip.wav")

	svc := NewService(Config{Model: "large-v3", BeamSize: 5, Language: "fi"})
	svc.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		if name != UVXCommand {
			t.Fatalf("expected %s, got %s", UVXCommand, name)
		}
		if args[0] != TranscriberTool {
			t.Fatalf("expected transcriber tool first, got %s", args[0])
		}
		if !slices.Contains(args, "--beam_size") {
			t.Fatal("expected fixed beam size argument")
		}
		if idx := slices.Index(args, "--language"); idx < 0 || args[idx+1] != "fi" {
			t.Fatalf("expected language fi in args: %v", args)
		}
		writeTranscript(t, filepath.Join(dir, "clip.json"), map[string]any{
			"language":             "fi",
			"language_probability": 0.97,
			"segments": []map[string]any{
				{"start": 0.0, "end": 2.0, "text": " Hei "},
				{"start": 2.5, "end": 4.25, "text": "Mitä kuuluu?"},
			},
		})
		return nil
	})

	result, err := svc.Transcribe(context.Background(), audio, dir)
	if err != nil {
		t.Fatalf("Transcribe returned error: %v", err)
	}
	if result.Language != "fi" {
		t.Fatalf("unexpected language: %q", result.Language)
	}
	if result.LanguageProbability != 0.97 {
		t.Fatalf("unexpected probability: %v", result.LanguageProbability)
	}
	if len(result.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(result.Segments))
	}
	texts := result.Texts()
	if texts[0] != "Hei" || texts[1] != "Mitä kuuluu?" {
		t.Fatalf("unexpected texts: %v", texts)
	}
}

func TestLoadResultClampsNegativeSpans(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	writeTranscript(t, path, map[string]any{
		"language": "fin",
		"segments": []map[string]any{
			{"start": 5.0, "end": 4.0, "text": "takaperin"},
		},
	})

	result, err := LoadResult(path)
	if err != nil {
		t.Fatalf("LoadResult returned error: %v", err)
	}
	if result.Language != "fi" {
		t.Fatalf("expected normalized language fi, got %q", result.Language)
	}
	if result.Segments[0].End != result.Segments[0].Start {
		t.Fatalf("expected end clamped to start, got %+v", result.Segments[0])
	}
}

func TestBuildArgsDeviceSelection(t *testing.T) {
	cpu := NewService(Config{})
	args := cpu.buildArgs("a.wav", "out")
	if !slices.Contains(args, CPUDevice) || !slices.Contains(args, CPUComputeType) {
		t.Fatalf("expected cpu device settings: %v", args)
	}

	gpu := NewService(Config{CUDAEnabled: true})
	args = gpu.buildArgs("a.wav", "out")
	if !slices.Contains(args, CUDADevice) {
		t.Fatalf("expected cuda device: %v", args)
	}
}
