package pipeline

import (
	"context"
	"fmt"

	"kielo/internal/fileutil"
	"kielo/internal/queue"
	"kielo/internal/services"
)

// outroStage concatenates the fixed outro clip after the mixed output,
// overwriting the batch output once more. A missing outro asset is reported
// and skipped.
type outroStage struct {
	m *Manager
}

func (s *outroStage) Prepare(ctx context.Context, item *queue.Item) error {
	if !fileutil.Exists(s.m.cfg.OutroPath()) {
		return services.Wrap(services.ErrNotFound, "outro", "locate outro asset",
			fmt.Sprintf("outro clip missing: %s", s.m.cfg.OutroPath()), nil)
	}
	return nil
}

func (s *outroStage) Execute(ctx context.Context, item *queue.Item) error {
	if !fileutil.Exists(item.OutputFile) {
		return services.Wrap(services.ErrNotFound, "outro", "locate input",
			fmt.Sprintf("mixed output missing: %s", item.OutputFile), nil)
	}
	return s.m.transcoder.Concatenate(ctx, item.OutputFile, s.m.cfg.OutroPath(), item.OutputFile)
}
