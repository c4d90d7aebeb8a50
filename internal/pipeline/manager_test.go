package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"

	"kielo/internal/config"
	"kielo/internal/logging"
	"kielo/internal/queue"
	"kielo/internal/services/whisper"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.Paths = config.Paths{
		SourceDir:    filepath.Join(root, "source"),
		OutputDir:    filepath.Join(root, "output"),
		SubtitlesDir: filepath.Join(root, "subtitles"),
		StagingDir:   filepath.Join(root, "staging"),
		AssetsDir:    filepath.Join(root, "assets"),
		LogDir:       filepath.Join(root, "logs"),
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	return &cfg
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

type fakeTranscoder struct {
	calls     []string
	mixInputs []string
	failScale bool
}

func (f *fakeTranscoder) record(op, dest string) error {
	f.calls = append(f.calls, op)
	return os.WriteFile(dest, []byte(op), 0o644)
}

func (f *fakeTranscoder) ExtractAudio(ctx context.Context, source, dest string) error {
	return f.record("extract", dest)
}

func (f *fakeTranscoder) ScaleTimestamps(ctx context.Context, source, dest string, factor float64) error {
	f.calls = append(f.calls, "scale")
	if f.failScale {
		return fmt.Errorf("scale failed")
	}
	return os.WriteFile(dest, []byte("scale"), 0o644)
}

func (f *fakeTranscoder) MixAudio(ctx context.Context, video, music string, gainDB, durationSeconds float64, dest string) error {
	f.mixInputs = append(f.mixInputs, video)
	return f.record("mix", dest)
}

func (f *fakeTranscoder) OverlaySubtitles(ctx context.Context, video, subtitleDoc, dest string) error {
	return f.record("overlay:"+filepath.Base(subtitleDoc), dest)
}

func (f *fakeTranscoder) Concatenate(ctx context.Context, first, second, dest string) error {
	return f.record("concat", dest)
}

type fakeTranscriber struct {
	calls    int
	failFor  string
	language string
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audioPath, outputDir string) (whisper.Result, error) {
	f.calls++
	if f.failFor != "" && strings.Contains(audioPath, f.failFor) {
		return whisper.Result{}, fmt.Errorf("model crashed")
	}
	lang := f.language
	if lang == "" {
		lang = "fi"
	}
	return whisper.Result{
		Segments:            []whisper.Segment{{Start: 0, End: 2, Text: "Hei"}},
		Language:            lang,
		LanguageProbability: 0.98,
	}, nil
}

type fakeTranslator struct {
	calls int
}

func (f *fakeTranslator) Translate(ctx context.Context, lines []string) ([]string, error) {
	f.calls++
	out := make([]string, len(lines))
	for i := range out {
		out[i] = "Hi"
	}
	return out, nil
}

type staticPrompter struct {
	reuse bool
	asked int
}

func (p *staticPrompter) ConfirmReuse(ctx context.Context, title, subtitlePath string) (bool, error) {
	p.asked++
	return p.reuse, nil
}

type harness struct {
	cfg        *config.Config
	store      *queue.Store
	transcoder *fakeTranscoder
	scriber    *fakeTranscriber
	translator *fakeTranslator
	prompter   *staticPrompter
	manager    *Manager
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	cfg := testConfig(t)
	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	h := &harness{
		cfg:        cfg,
		store:      store,
		transcoder: &fakeTranscoder{},
		scriber:    &fakeTranscriber{},
		translator: &fakeTranslator{},
		prompter:   &staticPrompter{},
	}
	base := []Option{
		WithTranscoder(h.transcoder),
		WithTranscriber(h.scriber),
		WithTranslator(h.translator),
		WithPrompter(h.prompter),
		WithDurationProbe(func(ctx context.Context, path string) (float64, error) {
			return 10.0, nil
		}),
	}
	h.manager = NewManager(cfg, store, logging.NewNop(), append(base, opts...)...)
	return h
}

func (h *harness) addSource(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(h.cfg.Paths.SourceDir, name)
	writeFile(t, path, "video")
	return path
}

func (h *harness) addAssets(t *testing.T) {
	t.Helper()
	writeFile(t, h.cfg.MusicPath(), "music")
	writeFile(t, h.cfg.OutroPath(), "outro")
}

func TestRunProcessesItemThroughAllStages(t *testing.T) {
	h := newHarness(t)
	h.addSource(t, "clip.mp4")
	h.addAssets(t)

	report, err := h.manager.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(report.Items))
	}
	item := report.Items[0]
	if item.Status != queue.StatusCompleted {
		t.Fatalf("expected completed, got %s (errors: %+v)", item.Status, item.StageErrors)
	}
	if len(item.StageErrors) != 0 {
		t.Fatalf("expected no stage errors, got %+v", item.StageErrors)
	}

	output := filepath.Join(h.cfg.Paths.OutputDir, "clip.mp4")
	if _, err := os.Stat(output); err != nil {
		t.Fatalf("expected final output file: %v", err)
	}

	archived := filepath.Join(h.cfg.Paths.SubtitlesDir, "clip.ass")
	if _, err := os.Stat(archived); err != nil {
		t.Fatalf("expected archived subtitle document: %v", err)
	}
	working := filepath.Join(h.cfg.Paths.SourceDir, "clip.ass")
	if _, err := os.Stat(working); !os.IsNotExist(err) {
		t.Fatal("expected working subtitle document to be moved away")
	}

	if _, err := os.Stat(h.cfg.Paths.StagingDir); !os.IsNotExist(err) {
		t.Fatal("expected staging directory removed at batch end")
	}

	want := []string{"extract", "overlay:clip.ass", "scale", "mix", "concat"}
	if len(h.transcoder.calls) != len(want) {
		t.Fatalf("unexpected call sequence: %v", h.transcoder.calls)
	}
	for i, op := range want {
		if h.transcoder.calls[i] != op {
			t.Fatalf("call %d: expected %s, got %s (all: %v)", i, op, h.transcoder.calls[i], h.transcoder.calls)
		}
	}

	stored, err := h.store.GetByID(context.Background(), item.ItemID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Status != queue.StatusCompleted {
		t.Fatalf("expected persisted completed status, got %s", stored.Status)
	}
	if stored.DetectedLanguage != "fi" || stored.LanguageConfidence != 0.98 {
		t.Fatalf("expected detected language persisted, got %q %v", stored.DetectedLanguage, stored.LanguageConfidence)
	}
}

func TestSlowdownFailureFallsBackToSubtitledOutput(t *testing.T) {
	h := newHarness(t)
	h.transcoder.failScale = true
	h.addSource(t, "clip.mp4")
	h.addAssets(t)

	report, err := h.manager.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	item := report.Items[0]
	if item.Status != queue.StatusCompleted {
		t.Fatalf("expected completed despite slowdown failure, got %s", item.Status)
	}
	if len(item.StageErrors) != 1 || item.StageErrors[0].Stage != "slowdown" {
		t.Fatalf("expected one slowdown stage error, got %+v", item.StageErrors)
	}

	if len(h.transcoder.mixInputs) != 1 {
		t.Fatalf("expected one mix call, got %d", len(h.transcoder.mixInputs))
	}
	subtitled := filepath.Join(h.cfg.Paths.OutputDir, "clip.mp4")
	if h.transcoder.mixInputs[0] != subtitled {
		t.Fatalf("expected mix to read the subtitled output %s, got %s", subtitled, h.transcoder.mixInputs[0])
	}
}

func TestSkipToEmbedDoesNotInvokeEngines(t *testing.T) {
	h := newHarness(t)
	h.prompter.reuse = true
	h.addSource(t, "clip.mp4")
	h.addAssets(t)
	archived := filepath.Join(h.cfg.Paths.SubtitlesDir, "clip.ass")
	writeFile(t, archived, "[Script Info]")

	report, err := h.manager.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Items[0].Status != queue.StatusCompleted {
		t.Fatalf("expected completed, got %s", report.Items[0].Status)
	}
	if h.prompter.asked != 1 {
		t.Fatalf("expected exactly one prompt, got %d", h.prompter.asked)
	}
	if h.scriber.calls != 0 {
		t.Fatalf("expected transcript engine untouched, got %d calls", h.scriber.calls)
	}
	if h.translator.calls != 0 {
		t.Fatalf("expected translation engine untouched, got %d calls", h.translator.calls)
	}

	output := filepath.Join(h.cfg.Paths.OutputDir, "clip.mp4")
	if _, err := os.Stat(output); err != nil {
		t.Fatalf("expected subtitled output despite skip-to-embed: %v", err)
	}
	for _, op := range h.transcoder.calls {
		if op == "extract" {
			t.Fatal("expected no audio extraction on the skip-to-embed path")
		}
	}
}

func TestMissingMusicSkipsMixButRunsOutro(t *testing.T) {
	h := newHarness(t)
	h.addSource(t, "clip.mp4")
	writeFile(t, h.cfg.OutroPath(), "outro")

	report, err := h.manager.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	item := report.Items[0]
	if item.Status != queue.StatusCompleted {
		t.Fatalf("expected completed, got %s", item.Status)
	}
	if len(item.StageErrors) != 1 || item.StageErrors[0].Stage != "mix" {
		t.Fatalf("expected one mix stage error, got %+v", item.StageErrors)
	}

	sawMix, sawConcat := false, false
	for _, op := range h.transcoder.calls {
		switch op {
		case "mix":
			sawMix = true
		case "concat":
			sawConcat = true
		}
	}
	if sawMix {
		t.Fatal("expected mix to be skipped")
	}
	if !sawConcat {
		t.Fatal("expected outro to run after mix skip")
	}
}

func TestUnknownDurationSkipsMix(t *testing.T) {
	h := newHarness(t, WithDurationProbe(func(ctx context.Context, path string) (float64, error) {
		return 0, nil
	}))
	h.addSource(t, "clip.mp4")
	h.addAssets(t)

	report, err := h.manager.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	item := report.Items[0]
	if item.Status != queue.StatusCompleted {
		t.Fatalf("expected completed, got %s", item.Status)
	}
	if len(item.StageErrors) != 1 || item.StageErrors[0].Stage != "mix" {
		t.Fatalf("expected one mix stage error, got %+v", item.StageErrors)
	}
	for _, op := range h.transcoder.calls {
		if op == "mix" {
			t.Fatal("expected no mix call for unknown duration")
		}
	}
}

func TestMissingOutroSkips(t *testing.T) {
	h := newHarness(t)
	h.addSource(t, "clip.mp4")
	writeFile(t, h.cfg.MusicPath(), "music")

	report, err := h.manager.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	item := report.Items[0]
	if item.Status != queue.StatusCompleted {
		t.Fatalf("expected completed, got %s", item.Status)
	}
	if len(item.StageErrors) != 1 || item.StageErrors[0].Stage != "outro" {
		t.Fatalf("expected one outro stage error, got %+v", item.StageErrors)
	}
}

func TestItemFailureDoesNotAbortBatch(t *testing.T) {
	h := newHarness(t)
	h.scriber.failFor = "broken"
	h.addSource(t, "broken.mp4")
	h.addSource(t, "clip.mp4")
	h.addAssets(t)

	report, err := h.manager.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(report.Items))
	}
	if report.Items[0].Status != queue.StatusFailed {
		t.Fatalf("expected first item failed, got %s", report.Items[0].Status)
	}
	if report.Items[1].Status != queue.StatusCompleted {
		t.Fatalf("expected second item completed, got %s", report.Items[1].Status)
	}
	if report.Failed() != 1 || report.Completed() != 1 {
		t.Fatalf("unexpected batch counts: failed=%d completed=%d", report.Failed(), report.Completed())
	}
}

func TestRunRefusesConcurrentBatch(t *testing.T) {
	h := newHarness(t)

	other := flock.New(filepath.Join(h.cfg.Paths.LogDir, "kielo.lock"))
	locked, err := other.TryLock()
	if err != nil {
		t.Fatalf("TryLock: %v", err)
	}
	if !locked {
		t.Fatal("expected to acquire lock")
	}
	defer func() { _ = other.Unlock() }()

	if _, err := h.manager.Run(context.Background()); err == nil {
		t.Fatal("expected error when another batch holds the lock")
	}
}

func TestDiscoverSourcesFiltersAndSorts(t *testing.T) {
	cfg := testConfig(t)
	writeFile(t, filepath.Join(cfg.Paths.SourceDir, "b.mp4"), "")
	writeFile(t, filepath.Join(cfg.Paths.SourceDir, "a.MOV"), "")
	writeFile(t, filepath.Join(cfg.Paths.SourceDir, "notes.txt"), "")
	if err := os.MkdirAll(filepath.Join(cfg.Paths.SourceDir, "nested"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFile(t, filepath.Join(cfg.Paths.SourceDir, "nested", "c.mp4"), "")

	sources, err := DiscoverSources(cfg)
	if err != nil {
		t.Fatalf("DiscoverSources: %v", err)
	}
	if len(sources) != 2 {
		t.Fatalf("expected 2 sources, got %v", sources)
	}
	if filepath.Base(sources[0]) != "a.MOV" || filepath.Base(sources[1]) != "b.mp4" {
		t.Fatalf("unexpected order: %v", sources)
	}
}
