package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadPromptsMissingFile(t *testing.T) {
	p, err := LoadPrompts(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file should not be an error: %v", err)
	}
	if got := p.Review.Build("draft"); got != "draft" {
		t.Errorf("expected text unchanged, got %q", got)
	}
}

func TestLoadPrompts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	body := `
review:
  instruction: "다음 초안을 브랜드 가이드라인에 맞춰 수정해 주세요."
generate:
  assistant_id: asst_generate
  instruction: "다음 주제로 초안을 작성해 주세요."
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	p, err := LoadPrompts(path)
	if err != nil {
		t.Fatalf("LoadPrompts: %v", err)
	}

	review, ok := p.Mode(ModeReview)
	if !ok {
		t.Fatal("review mode missing")
	}
	if got := review.Assistant("asst_default"); got != "asst_default" {
		t.Errorf("review should use default assistant, got %q", got)
	}
	want := "다음 초안을 브랜드 가이드라인에 맞춰 수정해 주세요.\n\n안녕하세요"
	if got := review.Build("안녕하세요"); got != want {
		t.Errorf("Build = %q, want %q", got, want)
	}

	gen, _ := p.Mode(ModeGenerate)
	if got := gen.Assistant("asst_default"); got != "asst_generate" {
		t.Errorf("generate assistant = %q", got)
	}

	if _, ok := p.Mode("translate"); ok {
		t.Errorf("unknown mode should not resolve")
	}
}

func TestLoadPromptsInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	if err := os.WriteFile(path, []byte("review: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadPrompts(path); err == nil {
		t.Fatal("expected parse error")
	}
}
