package lexicon

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultLexicon(t *testing.T) {
	lex := Default()
	if lex.Version == "" {
		t.Error("Default() version is empty")
	}
	if len(lex.Topics) != 10 {
		t.Errorf("Default() topics = %d, want 10", len(lex.Topics))
	}
	if len(lex.MilestoneCategories) != 5 {
		t.Errorf("Default() milestone categories = %d, want 5", len(lex.MilestoneCategories))
	}

	// 状态判断忽略大小写
	if !lex.IsTerminal("Completed") {
		t.Error("IsTerminal(Completed) = false, want true")
	}
	if !lex.IsOpen("PENDING") {
		t.Error("IsOpen(PENDING) = false, want true")
	}
	if lex.IsTerminal("pending") {
		t.Error("IsTerminal(pending) = true, want false")
	}
}

func TestEntryMatches(t *testing.T) {
	entry := Entry{Keyword: "revenue", Terms: []string{"revenue", "营收"}}
	if !entry.Matches("本月营收环比增长") {
		t.Error("Matches() = false for Chinese term")
	}
	if !entry.Matches("revenue doubled this quarter") {
		t.Error("Matches() = false for English term")
	}
	if entry.Matches("团队扩张计划") {
		t.Error("Matches() = true for unrelated text")
	}
}

func TestLoadEmptyPath(t *testing.T) {
	lex, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if lex.Version != Default().Version {
		t.Errorf("Load(\"\") version = %s, want default", lex.Version)
	}
}

func TestLoadFromFile(t *testing.T) {
	content := `version: "test-1"
topics:
  - keyword: ai
    terms: ["ai", "模型"]
terminal_statuses: ["done"]
`
	path := filepath.Join(t.TempDir(), "lexicon.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	lex, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if lex.Version != "test-1" {
		t.Errorf("Load() version = %s, want test-1", lex.Version)
	}
	if len(lex.Topics) != 1 || lex.Topics[0].Keyword != "ai" {
		t.Errorf("Load() topics = %v", lex.Topics)
	}
	if !lex.IsTerminal("done") {
		t.Error("IsTerminal(done) = false after override")
	}
}

func TestLoadMissingVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicon.yaml")
	if err := os.WriteFile(path, []byte("topics: []\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() without version should fail")
	}
}
