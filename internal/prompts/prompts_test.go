package prompts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultTemplatesRender(t *testing.T) {
	set := Default()
	rendered := renderAnswer(set.Answer, set.System, "CTX", "QUESTION")
	if !strings.Contains(rendered, "CTX") || !strings.Contains(rendered, "QUESTION") {
		t.Fatalf("answer template lost placeholders:\n%s", rendered)
	}

	rendered = renderAnswer(set.Count, set.System, "CTX", "QUESTION")
	if !strings.Contains(rendered, "Enumerate") {
		t.Fatalf("count template missing enumeration instruction:\n%s", rendered)
	}
}

func renderAnswer(template, system, context, question string) string {
	return strings.NewReplacer(
		"%[1]s", system,
		"%[2]s", context,
		"%[3]s", question,
	).Replace(template)
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	set, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if set != Default() {
		t.Fatalf("expected defaults for empty path")
	}
}

func TestLoadOverridesSelectedFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prompts.yaml")
	content := "system: |\n  Custom system prompt.\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write prompts file: %v", err)
	}

	set, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(set.System, "Custom system prompt.") {
		t.Fatalf("expected system override, got %q", set.System)
	}
	if set.Answer != Default().Answer {
		t.Fatalf("untouched fields must keep defaults")
	}
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoadMalformedYAMLReturnsError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("system: [unclosed"), 0o644); err != nil {
		t.Fatalf("write prompts file: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}
