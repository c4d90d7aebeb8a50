package main

import (
	"strings"
	"testing"
)

func TestQueueListEmpty(t *testing.T) {
	cfgPath := writeTestConfig(t)

	output, err := runCommand(t, "--config", cfgPath, "queue", "list")
	if err != nil {
		t.Fatalf("queue list: %v", err)
	}
	if !strings.Contains(output, "Queue is empty") {
		t.Fatalf("expected empty queue message, got %q", output)
	}
}

func TestQueueListRejectsUnknownStatus(t *testing.T) {
	cfgPath := writeTestConfig(t)

	if _, err := runCommand(t, "--config", cfgPath, "queue", "list", "--status", "ripping"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestQueueClearReportsCount(t *testing.T) {
	cfgPath := writeTestConfig(t)

	output, err := runCommand(t, "--config", cfgPath, "queue", "clear")
	if err != nil {
		t.Fatalf("queue clear: %v", err)
	}
	if !strings.Contains(output, "Removed 0 item(s)") {
		t.Fatalf("expected removal count, got %q", output)
	}
}
