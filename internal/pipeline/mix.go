package pipeline

import (
	"context"
	"fmt"

	"kielo/internal/fileutil"
	"kielo/internal/queue"
	"kielo/internal/services"
)

// mixStage loops the background music under whichever file the slowdown
// stage produced and finalizes the batch output in place. An unknown
// duration or a missing music asset skips the stage; the outro still runs
// on the current output.
type mixStage struct {
	m *Manager
}

func (s *mixStage) Prepare(ctx context.Context, item *queue.Item) error {
	if !fileutil.Exists(s.m.cfg.MusicPath()) {
		return services.Wrap(services.ErrNotFound, "mix", "locate music asset",
			fmt.Sprintf("background music missing: %s", s.m.cfg.MusicPath()), nil)
	}
	return nil
}

func (s *mixStage) Execute(ctx context.Context, item *queue.Item) error {
	input := item.StagedFile
	if input == "" {
		input = item.OutputFile
	}
	if !fileutil.Exists(input) {
		return services.Wrap(services.ErrNotFound, "mix", "locate input",
			fmt.Sprintf("mix input missing: %s", input), nil)
	}

	duration, err := s.m.probe(ctx, input)
	if err != nil {
		return err
	}
	if duration <= 0 {
		return services.Wrap(services.ErrValidation, "mix", "probe duration",
			"media duration unknown; refusing to trim music", nil)
	}

	return s.m.transcoder.MixAudio(ctx, input, s.m.cfg.MusicPath(),
		s.m.cfg.Pipeline.MusicGainDB, duration, item.OutputFile)
}
