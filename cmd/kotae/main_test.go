package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"testing"

	"github.com/hyperjump/kotae/internal/extract"
	"github.com/hyperjump/kotae/internal/generation"
	"github.com/hyperjump/kotae/internal/models"
)

func TestArgsReorder(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{
			name:     "flags after question are moved first",
			args:     []string{"refund window", "-top-k", "3"},
			expected: []string{"-top-k", "3", "refund window"},
		},
		{
			name:     "flags first returns unchanged",
			args:     []string{"-top-k", "3", "refund window"},
			expected: []string{"-top-k", "3", "refund window"},
		},
		{
			name:     "question only returns unchanged",
			args:     []string{"refund window"},
			expected: []string{"refund window"},
		},
		{
			name:     "empty args returns unchanged",
			args:     []string{},
			expected: []string{},
		},
		{
			name:     "multiple positionals then flags",
			args:     []string{"what", "is", "-output", "json"},
			expected: []string{"-output", "json", "what", "is"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := argsReorder(tt.args); !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("argsReorder() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"refund"}, "refund"},
		{[]string{"what", "is", "the", "refund", "window?"}, "what is the refund window?"},
		{[]string{"  quoted question  "}, "quoted question"},
		{nil, ""},
	}
	for _, tt := range tests {
		if got := buildQuery(tt.args); got != tt.want {
			t.Errorf("buildQuery(%v) = %q, want %q", tt.args, got, tt.want)
		}
	}
}

func TestCollectFiles(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{filepath.Join(dir, "a.pdf"), filepath.Join(sub, "b.md"), filepath.Join(dir, "c.png")} {
		if err := os.WriteFile(name, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	explicit := filepath.Join(dir, "c.png")

	files, err := collectFiles([]string{dir, explicit}, extract.SupportedExtensions())
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(files)
	want := []string{filepath.Join(dir, "a.pdf"), explicit, filepath.Join(sub, "b.md")}
	sort.Strings(want)
	if !reflect.DeepEqual(files, want) {
		t.Errorf("collectFiles() = %v, want %v", files, want)
	}

	if _, err := collectFiles([]string{filepath.Join(dir, "missing")}, nil); err == nil {
		t.Error("expected error for missing path")
	}
}

func TestLoadConfig_DefaultsWhenMissing(t *testing.T) {
	wd, _ := os.Getwd()
	dir := t.TempDir()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(wd) }()

	cfg, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Retrieval.TopK != 5 || cfg.Storage.DatabasePath != ":memory:" {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if _, err := loadConfig(filepath.Join(dir, "explicit.yaml")); err == nil {
		t.Error("an explicit missing config should fail")
	}
}

func writeOfflineConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
embedding:
  provider: mock
  dimensions: 128
generation:
  provider: extractive
chunking:
  max_chunk_size: 200
  chunk_overlap: 20
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestAskLocal(t *testing.T) {
	configPath := writeOfflineConfig(t)
	doc := filepath.Join(t.TempDir(), "handbook.txt")
	if err := os.WriteFile(doc, []byte("Refund window is thirty days. Office hours start at nine."), 0644); err != nil {
		t.Fatal(err)
	}

	resp, err := askLocal(context.Background(), configPath, doc, models.AskRequest{Query: "What is the refund window?"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Refused || !strings.Contains(resp.Answer, "thirty days") {
		t.Errorf("answer = %+v", resp)
	}
	if len(resp.Citations) != 1 || resp.Citations[0] != "handbook | page 1 | chunk #0" {
		t.Errorf("citations = %v", resp.Citations)
	}

	resp, err = askLocal(context.Background(), configPath, doc, models.AskRequest{Query: "zebra migration"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Answer != generation.RefusalSentinel {
		t.Errorf("expected refusal, got %q", resp.Answer)
	}
}

func TestPrintUsage(t *testing.T) {
	var buf bytes.Buffer
	printUsage(&buf)
	for _, cmd := range []string{"kotae server", "kotae ingest", "kotae ask", "kotae status", "kotae version"} {
		if !strings.Contains(buf.String(), cmd) {
			t.Errorf("usage missing %q", cmd)
		}
	}
}
