package whisper

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	langpkg "kielo/internal/language"
)

// Service provides transcription via the faster-whisper CLI.
type Service struct {
	cfg           Config
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewService creates a transcription service with the given configuration.
func NewService(cfg Config) *Service {
	return &Service{cfg: cfg}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

// Model returns the configured model name for logging.
func (s *Service) Model() string {
	if s.cfg.Model != "" {
		return s.cfg.Model
	}
	return DefaultModel
}

func (s *Service) run(ctx context.Context, name string, args ...string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// Segment is one transcribed span with timing in seconds. End is never
// before Start.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Result contains the parsed transcript and detected-language information.
type Result struct {
	Segments            []Segment
	Language            string
	LanguageProbability float64
}

type transcriptPayload struct {
	Language            string    `json:"language"`
	LanguageProbability float64   `json:"language_probability"`
	Segments            []Segment `json:"segments"`
}

// Transcribe runs the transcriber against an audio file, writing its JSON
// output under outputDir and returning the parsed transcript.
func (s *Service) Transcribe(ctx context.Context, audioPath, outputDir string) (Result, error) {
	var result Result

	if audioPath == "" {
		return result, fmt.Errorf("transcribe: audio path required")
	}
	if outputDir == "" {
		outputDir = filepath.Dir(audioPath)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return result, fmt.Errorf("transcribe: ensure output dir: %w", err)
	}

	args := s.buildArgs(audioPath, outputDir)
	if err := s.run(ctx, UVXCommand, args...); err != nil {
		return result, fmt.Errorf("transcribe: %w", err)
	}

	baseName := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	jsonPath := filepath.Join(outputDir, baseName+".json")
	return LoadResult(jsonPath)
}

// LoadResult parses a transcript JSON file produced by the transcriber.
func LoadResult(jsonPath string) (Result, error) {
	var result Result

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return result, fmt.Errorf("read transcript: %w", err)
	}
	var payload transcriptPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return result, fmt.Errorf("parse transcript json: %w", err)
	}

	segments := make([]Segment, 0, len(payload.Segments))
	for _, seg := range payload.Segments {
		if seg.End < seg.Start {
			seg.End = seg.Start
		}
		segments = append(segments, seg)
	}

	result.Segments = segments
	result.Language = langpkg.ToISO2(payload.Language)
	result.LanguageProbability = payload.LanguageProbability
	return result, nil
}

// Texts returns the trimmed segment texts in order, newlines flattened, as
// the translation engine expects them.
func (r Result) Texts() []string {
	texts := make([]string, 0, len(r.Segments))
	for _, seg := range r.Segments {
		texts = append(texts, strings.TrimSpace(strings.ReplaceAll(seg.Text, "\n", " ")))
	}
	return texts
}

// buildArgs constructs the uvx command arguments for the transcriber.
func (s *Service) buildArgs(audioPath, outputDir string) []string {
	model := s.cfg.Model
	if model == "" {
		model = DefaultModel
	}
	beamSize := s.cfg.BeamSize
	if beamSize <= 0 {
		beamSize = DefaultBeamSize
	}

	args := []string{
		TranscriberTool,
		audioPath,
		"--model", model,
		"--beam_size", strconv.Itoa(beamSize),
		"--output_format", OutputFormat,
		"--output_dir", outputDir,
	}

	if lang := langpkg.ToISO2(s.cfg.Language); lang != "" {
		args = append(args, "--language", lang)
	}

	if s.cfg.CUDAEnabled {
		args = append(args, "--device", CUDADevice)
	} else {
		args = append(args, "--device", CPUDevice, "--compute_type", CPUComputeType)
	}

	return args
}
