package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/timmy/viralpost/internal/app"
	"github.com/timmy/viralpost/internal/catalog"
	"github.com/timmy/viralpost/internal/config"
	"github.com/timmy/viralpost/internal/domain"
)

func newTestCLI(t *testing.T, out *bytes.Buffer, store string) *CLI {
	t.Helper()
	dir := t.TempDir()
	return &CLI{
		Out: out,
		Err: out,
		Load: func(string) (*config.Config, error) {
			return &config.Config{
				Storage:  config.StorageConfig{Type: "memory"},
				Database: config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(dir, "s.db"), AutoMigrate: true, MaxOpenConns: 1},
				Pipeline: config.PipelineConfig{ScratchDir: dir},
				Session:  config.SessionConfig{Store: store},
			}, nil
		},
		Wire: app.New,
	}
}

func execute(cli *CLI, args ...string) error {
	cmd := newRootCmd(cli)
	cmd.SetArgs(args)
	cmd.SetOut(cli.Out)
	cmd.SetErr(cli.Err)
	return cmd.ExecuteContext(context.Background())
}

func TestTemplatesCommand(t *testing.T) {
	var out bytes.Buffer
	if err := execute(newTestCLI(t, &out, "memory"), "templates"); err != nil {
		t.Fatalf("templates: %v", err)
	}

	var got []domain.TemplateDefinition
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(got) != len(catalog.Templates()) {
		t.Errorf("templates = %d, want %d", len(got), len(catalog.Templates()))
	}
}

func TestGenerateCommand_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		load    func(string) (*config.Config, error)
		wantErr string
	}{
		{
			name:    "missing thoughts",
			args:    []string{"generate"},
			wantErr: "thoughts",
		},
		{
			name: "config failure",
			args: []string{"generate", "--thoughts", "x"},
			load: func(string) (*config.Config, error) {
				return nil, errors.New("bad yaml")
			},
			wantErr: "bad yaml",
		},
		{
			name:    "invalid pipeline",
			args:    []string{"generate", "--thoughts", "x", "--pipeline", "video"},
			wantErr: "pipeline_type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			cli := newTestCLI(t, &out, "memory")
			if tt.load != nil {
				cli.Load = tt.load
			}
			err := execute(cli, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestSessionsCommand(t *testing.T) {
	var out bytes.Buffer
	if err := execute(newTestCLI(t, &out, "memory"), "sessions"); err == nil {
		t.Error("listing sessions from the memory store should fail")
	}

	out.Reset()
	if err := execute(newTestCLI(t, &out, "database"), "sessions", "--limit", "3"); err != nil {
		t.Fatalf("sessions: %v", err)
	}
	if strings.TrimSpace(out.String()) != "[]" {
		t.Errorf("output = %q, want empty list", out.String())
	}
}
