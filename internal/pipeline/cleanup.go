package pipeline

import (
	"context"
	"path/filepath"

	"kielo/internal/fileutil"
	"kielo/internal/logging"
	"kielo/internal/queue"
	"kielo/internal/subtitles"
)

// cleanupStage archives the working subtitle document and deletes the staged
// slowdown file. It runs for every discovered item, including failed ones.
type cleanupStage struct {
	m *Manager
}

func (s *cleanupStage) Prepare(ctx context.Context, item *queue.Item) error {
	return nil
}

func (s *cleanupStage) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, s.m.logger)

	workingDoc := subtitles.PathFor(filepath.Dir(item.SourcePath), item.SourcePath)
	if fileutil.Exists(workingDoc) {
		archivedDoc := subtitles.PathFor(s.m.cfg.Paths.SubtitlesDir, item.SourcePath)
		if err := fileutil.ReplaceFile(workingDoc, archivedDoc); err != nil {
			return err
		}
		item.SubtitleFile = archivedDoc
		logger.Info("archived subtitle document", logging.String("subtitle_file", archivedDoc))
	}

	if item.StagedFile != "" {
		if err := fileutil.RemoveIfExists(item.StagedFile); err != nil {
			return err
		}
		item.StagedFile = ""
	}
	return nil
}
