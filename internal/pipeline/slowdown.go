package pipeline

import (
	"context"
	"path/filepath"

	"kielo/internal/fileutil"
	"kielo/internal/queue"
	"kielo/internal/services"
)

var errMissingStagedOutput = services.Wrap(services.ErrExternalTool, "slowdown", "verify output",
	"re-timed file missing after transcode", nil)

// slowdownStage re-times the subtitled output into the staging directory.
// Failure is not fatal: the mixing stage falls back to the subtitled file
// when no staged output exists.
type slowdownStage struct {
	m *Manager
}

func (s *slowdownStage) Prepare(ctx context.Context, item *queue.Item) error {
	return nil
}

func (s *slowdownStage) Execute(ctx context.Context, item *queue.Item) error {
	staged := filepath.Join(s.m.cfg.Paths.StagingDir, filepath.Base(item.SourcePath))

	if err := s.m.transcoder.ScaleTimestamps(ctx, item.OutputFile, staged, s.m.cfg.SpeedFactor()); err != nil {
		item.StagedFile = ""
		return err
	}
	if !fileutil.Exists(staged) {
		item.StagedFile = ""
		return errMissingStagedOutput
	}

	item.StagedFile = staged
	return nil
}
