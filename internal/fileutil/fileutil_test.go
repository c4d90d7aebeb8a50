package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReplaceFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "incoming.mp4")
	dst := filepath.Join(dir, "final.mp4")

	if err := os.WriteFile(src, []byte("new"), 0o644); err != nil {
		t.Fatalf("write src: %v", err)
	}
	if err := os.WriteFile(dst, []byte("old"), 0o644); err != nil {
		t.Fatalf("write dst: %v", err)
	}

	if err := ReplaceFile(src, dst); err != nil {
		t.Fatalf("ReplaceFile returned error: %v", err)
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read dst: %v", err)
	}
	if string(data) != "new" {
		t.Fatalf("expected replaced content, got %q", string(data))
	}
	if Exists(src) {
		t.Fatal("expected source to be consumed")
	}
}

func TestTempSiblingStaysInDirectory(t *testing.T) {
	got := TempSibling("/media/output/video.mp4")
	if filepath.Dir(got) != "/media/output" {
		t.Fatalf("temp sibling left the directory: %q", got)
	}
	if filepath.Base(got) != ".tmp-video.mp4" {
		t.Fatalf("unexpected temp name: %q", got)
	}
}

func TestRemoveIfExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stale.wav")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := RemoveIfExists(path); err != nil {
		t.Fatalf("remove existing: %v", err)
	}
	if err := RemoveIfExists(path); err != nil {
		t.Fatalf("remove absent should be nil, got %v", err)
	}
}
