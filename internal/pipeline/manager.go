package pipeline

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"kielo/internal/config"
	"kielo/internal/logging"
	"kielo/internal/media/ffmpeg"
	"kielo/internal/media/ffprobe"
	"kielo/internal/queue"
	"kielo/internal/services"
	"kielo/internal/services/translate"
	"kielo/internal/services/whisper"
	"kielo/internal/stage"
)

type transcoder interface {
	ExtractAudio(ctx context.Context, source, dest string) error
	ScaleTimestamps(ctx context.Context, source, dest string, factor float64) error
	MixAudio(ctx context.Context, video, music string, gainDB, durationSeconds float64, dest string) error
	OverlaySubtitles(ctx context.Context, video, subtitleDoc, dest string) error
	Concatenate(ctx context.Context, first, second, dest string) error
}

type transcriber interface {
	Transcribe(ctx context.Context, audioPath, outputDir string) (whisper.Result, error)
}

type translator interface {
	Translate(ctx context.Context, lines []string) ([]string, error)
}

// durationProbe returns the media duration in seconds; 0 means unknown.
type durationProbe func(ctx context.Context, path string) (float64, error)

// Manager coordinates one batch run over the discovered source videos.
type Manager struct {
	cfg    *config.Config
	store  *queue.Store
	logger *slog.Logger

	transcoder  transcoder
	transcriber transcriber
	translator  translator
	probe       durationProbe
	prompter    Prompter
}

// Option overrides one of the manager's collaborators, mainly for tests.
type Option func(*Manager)

// WithTranscoder replaces the ffmpeg-backed transcoder.
func WithTranscoder(t transcoder) Option {
	return func(m *Manager) {
		if t != nil {
			m.transcoder = t
		}
	}
}

// WithTranscriber replaces the whisper-backed transcript engine.
func WithTranscriber(t transcriber) Option {
	return func(m *Manager) {
		if t != nil {
			m.transcriber = t
		}
	}
}

// WithTranslator replaces the translation client.
func WithTranslator(t translator) Option {
	return func(m *Manager) {
		if t != nil {
			m.translator = t
		}
	}
}

// WithDurationProbe replaces the ffprobe-backed duration lookup.
func WithDurationProbe(probe durationProbe) Option {
	return func(m *Manager) {
		if probe != nil {
			m.probe = probe
		}
	}
}

// WithPrompter replaces the interactive reuse prompter.
func WithPrompter(p Prompter) Option {
	return func(m *Manager) {
		if p != nil {
			m.prompter = p
		}
	}
}

// NewManager constructs a manager with production collaborators.
func NewManager(cfg *config.Config, store *queue.Store, logger *slog.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	m := &Manager{
		cfg:        cfg,
		store:      store,
		logger:     logger,
		transcoder: ffmpeg.New(cfg.FFmpegBinary()),
		transcriber: whisper.NewService(whisper.Config{
			Model:       cfg.Transcribe.Model,
			BeamSize:    cfg.Transcribe.BeamSize,
			Language:    cfg.Transcribe.Language,
			CUDAEnabled: cfg.Transcribe.CUDAEnabled,
		}),
		translator: translate.NewClient(translate.Config{
			APIKey:         cfg.Translate.APIKey,
			BaseURL:        cfg.Translate.BaseURL,
			Model:          cfg.Translate.Model,
			BatchSize:      cfg.Translate.BatchSize,
			SourceLanguage: cfg.Translate.SourceLanguage,
			TargetLanguage: cfg.Translate.TargetLanguage,
			TimeoutSeconds: cfg.Translate.TimeoutSeconds,
		}, translate.WithLogger(logger)),
		prompter: NewTerminalPrompter(cfg.Pipeline.AssumeReuse),
	}
	m.probe = func(ctx context.Context, path string) (float64, error) {
		result, err := ffprobe.Inspect(ctx, cfg.FFprobeBinary(), path)
		if err != nil {
			return 0, err
		}
		return result.DurationSeconds(), nil
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) stages() []stage.Definition {
	return []stage.Definition{
		{Name: "subtitles", Processing: queue.StatusSubtitling, Done: queue.StatusSubtitled, Handler: &subtitleStage{m}},
		{Name: "slowdown", Processing: queue.StatusSlowing, Done: queue.StatusSlowed, Handler: &slowdownStage{m}, Optional: true},
		{Name: "mix", Processing: queue.StatusMixing, Done: queue.StatusMixed, Handler: &mixStage{m}, Optional: true},
		{Name: "outro", Processing: queue.StatusAppendingOutro, Done: queue.StatusCompleted, Handler: &outroStage{m}, Optional: true},
		{Name: "cleanup", Handler: &cleanupStage{m}, Optional: true, Always: true},
	}
}

// Run processes every discovered source video through the stage sequence.
// Only batch-level problems (lock contention, unreadable source directory)
// return an error; per-item failures are reported in the BatchReport.
func (m *Manager) Run(ctx context.Context) (*BatchReport, error) {
	if err := m.cfg.EnsureDirectories(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "ensure directories", "", err)
	}

	lock := flock.New(filepath.Join(m.cfg.Paths.LogDir, "kielo.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "pipeline", "acquire lock", "", err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrValidation, "pipeline", "acquire lock",
			"another batch is already running", nil)
	}
	defer func() { _ = lock.Unlock() }()

	report := &BatchReport{
		BatchID:   uuid.NewString(),
		StartedAt: time.Now(),
	}
	batchLogger := m.logger.With(logging.String("batch_id", report.BatchID))

	sources, err := DiscoverSources(m.cfg)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "pipeline", "discover sources", "", err)
	}
	if len(sources) == 0 {
		batchLogger.Info("no source videos found", logging.String("source_dir", m.cfg.Paths.SourceDir))
		report.Elapsed = time.Since(report.StartedAt)
		return report, nil
	}
	batchLogger.Info("batch started", logging.Int("items", len(sources)))

	for _, source := range sources {
		item, itemErr := m.store.NewItem(ctx, source, report.BatchID)
		if itemErr != nil {
			batchLogger.Error("failed to enqueue item",
				logging.String("source_file", source), logging.Error(itemErr))
			report.Items = append(report.Items, ItemReport{
				SourcePath: source,
				Status:     queue.StatusFailed,
				StageErrors: []StageError{{
					Stage:   "enqueue",
					Message: itemErr.Error(),
				}},
			})
			continue
		}
		report.Items = append(report.Items, m.processItem(ctx, item))
	}

	if err := os.RemoveAll(m.cfg.Paths.StagingDir); err != nil {
		batchLogger.Warn("failed to remove staging directory", logging.Error(err))
	}

	report.Elapsed = time.Since(report.StartedAt)
	batchLogger.Info("batch completed",
		logging.Int("completed", report.Completed()),
		logging.Int("failed", report.Failed()),
		logging.Duration("elapsed", report.Elapsed),
	)
	return report, nil
}

func (m *Manager) processItem(ctx context.Context, item *queue.Item) ItemReport {
	start := time.Now()
	ctx = services.WithItemID(ctx, item.ID)
	ctx = services.WithRequestID(ctx, uuid.NewString())

	itemLogger := logging.WithContext(ctx, m.logger)
	itemLogger.Info("item started",
		logging.String(logging.FieldEventType, "item_start"),
		logging.String("source_file", item.SourcePath),
	)

	rep := ItemReport{
		ItemID:     item.ID,
		SourcePath: item.SourcePath,
		Title:      item.Title,
	}

	failed := false
	for _, def := range m.stages() {
		if failed && !def.Always {
			continue
		}
		if !m.runStage(ctx, def, item, &rep) {
			failed = true
		}
	}

	rep.Status = item.Status
	rep.OutputFile = item.OutputFile
	rep.Elapsed = time.Since(start)
	itemLogger.Info("item finished",
		logging.String(logging.FieldEventType, "item_finish"),
		logging.String("status", string(item.Status)),
		logging.Duration("elapsed", rep.Elapsed),
	)
	return rep
}

// runStage executes one stage and returns false when the item failed.
func (m *Manager) runStage(ctx context.Context, def stage.Definition, item *queue.Item, rep *ItemReport) bool {
	ctx = services.WithStage(ctx, def.Name)
	stageLogger := logging.WithContext(ctx, m.logger)

	if def.Processing != "" {
		item.Status = def.Processing
		item.InitProgress(def.Name, "")
		if err := m.store.Update(ctx, item); err != nil {
			stageLogger.Error("failed to persist stage transition", logging.Error(err))
		}
	}

	start := time.Now()
	stageLogger.Info("stage started", logging.String(logging.FieldEventType, "stage_start"))

	err := def.Handler.Prepare(ctx, item)
	if err == nil {
		err = def.Handler.Execute(ctx, item)
	}

	if err != nil {
		rep.StageErrors = append(rep.StageErrors, StageError{
			Stage:   def.Name,
			Message: services.Details(err).Message,
		})
		if !def.Optional {
			stageLogger.Error("stage failed",
				logging.String(logging.FieldEventType, "stage_failed"),
				logging.Error(err),
			)
			item.SetFailed(services.Details(err).Message)
			if updateErr := m.store.Update(ctx, item); updateErr != nil {
				stageLogger.Error("failed to persist item failure", logging.Error(updateErr))
			}
			return false
		}
		stageLogger.Warn("stage skipped",
			logging.String(logging.FieldEventType, "stage_skipped"),
			logging.Error(err),
		)
	}

	if def.Done != "" && item.Status != queue.StatusFailed {
		item.Status = def.Done
	}
	if updateErr := m.store.Update(ctx, item); updateErr != nil {
		stageLogger.Error("failed to persist stage result", logging.Error(updateErr))
	}

	if err == nil {
		stageLogger.Info("stage completed",
			logging.String(logging.FieldEventType, "stage_complete"),
			logging.Duration("stage_duration", time.Since(start)),
		)
	}
	return true
}
