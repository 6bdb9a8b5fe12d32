package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(t.Context())
	return out.String(), err
}

func TestImport_DryRun(t *testing.T) {
	dir := t.TempDir()
	bank := `
quiz_id: quiz-1
items:
  - question: "First-line test?"
    options: ["ECG", "CXR"]
    answer: "ecg"
  - question: "No matching answer?"
    options: ["A", "B"]
    answer: "C"
  - question: "Case item?"
    options: ["A", "B"]
    answer: "A"
    case_id: elsewhere
`
	if err := os.WriteFile(filepath.Join(dir, "bank.yaml"), []byte(bank), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "import", "--dry-run", dir)
	if err != nil {
		t.Fatalf("import error = %v", err)
	}
	want := "would import 2 items, 0 cases (1 skipped, 1 external cases)"
	if !strings.Contains(out, want) {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestImport_RequiresDir(t *testing.T) {
	if _, err := run(t, "import"); err == nil {
		t.Error("import without a directory should fail")
	}
}

func TestTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.xlsx")

	out, err := run(t, "template", "--output", path)
	if err != nil {
		t.Fatalf("template error = %v", err)
	}
	if !strings.Contains(out, "template written") {
		t.Errorf("output = %q", out)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat template: %v", err)
	}
	if info.Size() == 0 {
		t.Error("template is empty")
	}
}

func TestScores_RejectsBadLimit(t *testing.T) {
	if _, err := run(t, "scores", "--limit", "0", "cardio"); err == nil {
		t.Error("scores --limit 0 should fail")
	}
}
