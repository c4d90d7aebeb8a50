package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"kielo/internal/fileutil"
	"kielo/internal/language"
	"kielo/internal/logging"
	"kielo/internal/queue"
	"kielo/internal/services"
	"kielo/internal/subtitles"
)

// subtitleStage transcribes and translates the source audio, composes the
// dual-track document, and burns it into the batch output file. When an
// archived document already exists the prompter decides between reusing it
// and regenerating.
type subtitleStage struct {
	m *Manager
}

func (s *subtitleStage) Prepare(ctx context.Context, item *queue.Item) error {
	if !fileutil.Exists(item.SourcePath) {
		return services.Wrap(services.ErrNotFound, "subtitles", "locate source",
			fmt.Sprintf("source video missing: %s", item.SourcePath), nil)
	}
	return nil
}

func (s *subtitleStage) Execute(ctx context.Context, item *queue.Item) error {
	cfg := s.m.cfg
	logger := logging.WithContext(ctx, s.m.logger)

	outputPath := filepath.Join(cfg.Paths.OutputDir, filepath.Base(item.SourcePath))
	workingDoc := subtitles.PathFor(filepath.Dir(item.SourcePath), item.SourcePath)
	archivedDoc := subtitles.PathFor(cfg.Paths.SubtitlesDir, item.SourcePath)

	doc := workingDoc
	regenerate := true
	if fileutil.Exists(archivedDoc) {
		reuse, err := s.m.prompter.ConfirmReuse(ctx, item.Title, archivedDoc)
		if err != nil {
			return services.Wrap(services.ErrValidation, "subtitles", "reuse prompt", "", err)
		}
		if reuse {
			logger.Info("reusing archived subtitle document",
				logging.String("subtitle_file", archivedDoc))
			doc = archivedDoc
			regenerate = false
		}
	}

	if regenerate {
		if err := s.generate(ctx, item, workingDoc); err != nil {
			return err
		}
	}

	if err := s.m.transcoder.OverlaySubtitles(ctx, item.SourcePath, doc, outputPath); err != nil {
		return err
	}

	item.SubtitleFile = doc
	item.OutputFile = outputPath
	item.ProgressMessage = "subtitles embedded"
	return nil
}

// generate runs the transcript and translation engines and writes a fresh
// working document next to the source video.
func (s *subtitleStage) generate(ctx context.Context, item *queue.Item, workingDoc string) error {
	cfg := s.m.cfg
	logger := logging.WithContext(ctx, s.m.logger)

	stem := strings.TrimSuffix(filepath.Base(item.SourcePath), filepath.Ext(item.SourcePath))
	audioPath := filepath.Join(cfg.Paths.StagingDir, stem+".wav")

	if err := s.m.transcoder.ExtractAudio(ctx, item.SourcePath, audioPath); err != nil {
		return err
	}
	defer func() {
		_ = fileutil.RemoveIfExists(audioPath)
		_ = fileutil.RemoveIfExists(filepath.Join(cfg.Paths.StagingDir, stem+".json"))
	}()

	result, err := s.m.transcriber.Transcribe(ctx, audioPath, cfg.Paths.StagingDir)
	if err != nil {
		return err
	}
	item.DetectedLanguage = result.Language
	item.LanguageConfidence = result.LanguageProbability
	logger.Info("transcription finished",
		logging.String("language", language.DisplayName(result.Language)),
		logging.Float64("language_confidence", result.LanguageProbability),
		logging.Int("segments", len(result.Segments)),
	)

	translations, err := s.m.translator.Translate(ctx, result.Texts())
	if err != nil {
		return err
	}

	segments := make([]subtitles.Segment, len(result.Segments))
	for i, seg := range result.Segments {
		segments[i] = subtitles.Segment{Start: seg.Start, End: seg.End, Text: seg.Text}
	}
	doc := subtitles.Compose(segments, translations,
		language.DisplayName(cfg.Translate.SourceLanguage),
		language.DisplayName(cfg.Translate.TargetLanguage),
	)
	if err := doc.WriteFile(workingDoc); err != nil {
		return services.Wrap(services.ErrExternalTool, "subtitles", "write document", "", err)
	}
	return nil
}
