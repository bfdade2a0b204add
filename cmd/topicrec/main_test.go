package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/rushteam/topicrec/model"
	"github.com/rushteam/topicrec/service"
)

func newRecommender(t *testing.T) *service.Recommender {
	t.Helper()
	m, err := model.NewTopicModelFromTitles(
		[]string{"Alpha", "Beta", "Gamma"},
		[][]float64{{1, 0}, {0.9, 0.1}, {0, 1}},
	)
	if err != nil {
		t.Fatal(err)
	}
	rec, err := service.NewRecommender(m)
	if err != nil {
		t.Fatal(err)
	}
	return rec
}

func TestPrompt(t *testing.T) {
	var out bytes.Buffer
	if err := prompt(context.Background(), newRecommender(t), strings.NewReader("Alpah, 1\n"), &out); err != nil {
		t.Fatalf("prompt() error = %v", err)
	}
	want := "Enter your movies here: \n==========You searched for: \n\n- Alpha\n\n==========You should watch: \n\n- Beta\n\n"
	if !strings.HasSuffix(out.String(), want) {
		t.Errorf("output = %q, want suffix %q", out.String(), want)
	}
}

func TestAnswer_Notice(t *testing.T) {
	var out bytes.Buffer
	if err := answer(context.Background(), newRecommender(t), "Alpha, 0", &out); err != nil {
		t.Fatalf("answer() error = %v", err)
	}
	if got := out.String(); got != service.NoticeZeroCount+"\n" {
		t.Errorf("output = %q", got)
	}
}

func TestAnswer_Malformed(t *testing.T) {
	if err := answer(context.Background(), newRecommender(t), "Alpha", &bytes.Buffer{}); err == nil {
		t.Error("answer() error = nil for malformed query")
	}
}

// writeConfig 在临时目录写入 JSON 产物和指向它的配置文件，返回配置路径。
func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	artifact := filepath.Join(dir, "model.json")
	bundle := `{"titles": ["Alpha", "Beta", "Gamma"], "doc_topic": [[1, 0], [0.9, 0.1], [0, 1]]}`
	if err := os.WriteFile(artifact, []byte(bundle), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	cfg := "artifact:\n  path: " + artifact + "\nlog:\n  level: error\n"
	path := filepath.Join(dir, "topicrec.yaml")
	if err := os.WriteFile(path, []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCommands(t *testing.T) {
	cfg := writeConfig(t)

	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{"interactive", "Gamma, 1\n", []string{"--config", cfg}, "==========You should watch: \n\n- Beta\n\n"},
		{"query", "", []string{"query", "-c", cfg, "Alpha, 1"}, "==========You should watch: \n\n- Beta\n\n"},
		{"query split across args", "", []string{"query", "-c", cfg, "Alpha,", "Gamma,", "1"}, "- Alpha\n\n- Gamma\n\n=========="},
		{"query notice", "", []string{"query", "-c", cfg, "Alpha, 0"}, service.NoticeZeroCount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.stdin, tt.args...)
			if err != nil {
				t.Fatalf("execute %v: %v", tt.args, err)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("output = %q, want it to contain %q", out, tt.want)
			}
		})
	}
}

func TestCommands_Errors(t *testing.T) {
	cfg := writeConfig(t)

	tests := []struct {
		name string
		args []string
	}{
		{"query without args", []string{"query", "-c", cfg}},
		{"malformed query", []string{"query", "-c", cfg, "Alpha"}},
		{"missing config file", []string{"query", "-c", filepath.Join(t.TempDir(), "none.yaml"), "Alpha, 1"}},
		{"export without target", []string{"export", "-c", cfg}},
		{"unknown subcommand", []string{"recommend"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, "", tt.args...); err == nil {
				t.Errorf("execute %v: error = nil", tt.args)
			}
		})
	}
}

func TestExportCommand(t *testing.T) {
	cfg := writeConfig(t)
	target := filepath.Join(t.TempDir(), "model.db")

	if _, err := execute(t, "", "export", "-c", cfg, target); err != nil {
		t.Fatalf("export: %v", err)
	}
	m, err := model.Load(context.Background(), model.Source{Path: target})
	if err != nil {
		t.Fatalf("Load(%s) error = %v", target, err)
	}
	if want := []string{"Alpha", "Beta", "Gamma"}; !slices.Equal(m.Titles(), want) {
		t.Errorf("Titles() = %q, want %q", m.Titles(), want)
	}
}
