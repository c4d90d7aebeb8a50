package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"kielo/internal/config"
)

func TestCheckDirectoryAccess(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("Source directory", dir)
	if !result.Passed {
		t.Fatalf("expected pass for writable dir, got %+v", result)
	}

	missing := filepath.Join(dir, "missing")
	result = CheckDirectoryAccess("Source directory", missing)
	if result.Passed {
		t.Fatalf("expected failure for missing dir, got %+v", result)
	}

	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	result = CheckDirectoryAccess("Source directory", file)
	if result.Passed {
		t.Fatalf("expected failure for non-directory, got %+v", result)
	}
}

func TestCheckFreeSpace(t *testing.T) {
	dir := t.TempDir()
	result := CheckFreeSpace("Staging free space", dir, 1)
	if !result.Passed {
		t.Fatalf("expected pass for tiny minimum, got %+v", result)
	}

	result = CheckFreeSpace("Staging free space", filepath.Join(dir, "missing"), 1)
	if result.Passed {
		t.Fatalf("expected failure for missing path, got %+v", result)
	}
}

func TestCheckTranslationAPIMissingKey(t *testing.T) {
	cfg := config.Default()
	cfg.Translate.APIKey = ""
	result := CheckTranslationAPI(context.Background(), &cfg)
	if result.Passed {
		t.Fatalf("expected failure without api key, got %+v", result)
	}
}

func TestCheckTranslationAPIReachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Translate.APIKey = "key"
	cfg.Translate.BaseURL = server.URL
	result := CheckTranslationAPI(context.Background(), &cfg)
	if !result.Passed {
		t.Fatalf("expected pass, got %+v", result)
	}

	cfg.Translate.APIKey = "wrong"
	result = CheckTranslationAPI(context.Background(), &cfg)
	if result.Passed {
		t.Fatalf("expected auth failure, got %+v", result)
	}
}

func TestCheckSystemDeps(t *testing.T) {
	cfg := config.Default()
	results := CheckSystemDeps(&cfg)
	if len(results) != 3 {
		t.Fatalf("expected 3 requirements, got %d", len(results))
	}
	names := map[string]bool{}
	for _, r := range results {
		names[r.Name] = true
	}
	for _, want := range []string{"FFmpeg", "FFprobe", "uvx"} {
		if !names[want] {
			t.Fatalf("missing requirement %s in %v", want, results)
		}
	}
}

func TestRunAllReportsEveryCheck(t *testing.T) {
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
	cfg.Translate.APIKey = ""

	results := RunAll(context.Background(), &cfg)
	if len(results) != 6 {
		t.Fatalf("expected 6 checks, got %d", len(results))
	}
	// All directory and free-space checks pass; only the credential check fails.
	failed := 0
	for _, r := range results {
		if !r.Passed {
			failed++
		}
	}
	if failed != 1 {
		t.Fatalf("expected exactly the translation check to fail, got %+v", results)
	}
}
