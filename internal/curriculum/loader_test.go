package curriculum_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/p-n-ai/pai-quiz/internal/curriculum"
)

func TestLoader_LoadsYAMLBank(t *testing.T) {
	dir := setupTestBank(t)

	loader, err := curriculum.NewLoader(dir)
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}

	res := loader.Result()
	if len(res.Bank.Items) != 2 {
		t.Errorf("items = %d, want 2", len(res.Bank.Items))
	}
	if len(res.Bank.Cases) != 1 {
		t.Fatalf("cases = %d, want 1", len(res.Bank.Cases))
	}
	if res.Bank.Cases[0].TotalQuestion != 1 {
		t.Errorf("case TotalQuestion = %d, want 1", res.Bank.Cases[0].TotalQuestion)
	}
}

func TestLoader_Spec(t *testing.T) {
	dir := setupTestBank(t)

	loader, err := curriculum.NewLoader(dir)
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}

	spec, found := loader.Spec("cardio-mix")
	if !found {
		t.Fatal("Spec(cardio-mix) not found")
	}
	if got := len(spec.Leaves()); got != 3 {
		t.Errorf("Leaves() = %d, want 3", got)
	}

	if _, found := loader.Spec("nonexistent"); found {
		t.Error("Spec(nonexistent) should not be found")
	}
}

func TestLoader_SkipsInvalidFiles(t *testing.T) {
	dir := setupTestBank(t)

	os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("items: [unclosed"), 0o644)
	os.WriteFile(filepath.Join(dir, "broken.json"), []byte(`{"items": [{"question": ""}]}`), 0o644)
	os.WriteFile(filepath.Join(dir, "notes.md"), []byte("# not a bank"), 0o644)

	loader, err := curriculum.NewLoader(dir)
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}
	if got := len(loader.Result().Bank.Items); got != 2 {
		t.Errorf("items = %d, want 2 (invalid files should be skipped)", got)
	}
}

func TestLoader_JSONBank(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "bank.json"), []byte(`{
  "quiz_id": "quiz-json",
  "items": [
    {"question": "Q?", "options": ["a", "b"], "answer": "B", "system": "Renal", "reviewed": true}
  ]
}`), 0o644)

	loader, err := curriculum.NewLoader(dir)
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}
	items := loader.Result().Bank.Items
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	if items[0].QuizID != "quiz-json" {
		t.Errorf("QuizID = %q, want quiz-json", items[0].QuizID)
	}
	if items[0].Answer.OptionID != items[0].Options[1].ID {
		t.Error("answer should match option b case-insensitively")
	}
}

func TestLoader_XLSXBank(t *testing.T) {
	dir := t.TempDir()

	f := excelize.NewFile()
	header := []any{"question", "optionA", "optionB", "optionC", "optionD", "answer", "system", "level", "reviewed", "quiz_id"}
	row := []any{"Which is a vowel?", "b", "c", "e", "d", "e", "Language", "2", "true", "quiz-x"}
	if err := f.SetSheetRow("Sheet1", "A1", &header); err != nil {
		t.Fatalf("SetSheetRow() error = %v", err)
	}
	if err := f.SetSheetRow("Sheet1", "A2", &row); err != nil {
		t.Fatalf("SetSheetRow() error = %v", err)
	}
	if err := f.SaveAs(filepath.Join(dir, "bank.xlsx")); err != nil {
		t.Fatalf("SaveAs() error = %v", err)
	}
	f.Close()

	loader, err := curriculum.NewLoader(dir)
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}
	items := loader.Result().Bank.Items
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	it := items[0]
	if it.Level != 2 || !it.Reviewed || it.QuizID != "quiz-x" || len(it.Options) != 4 {
		t.Errorf("item = %+v, want level 2, reviewed, quiz-x, 4 options", it)
	}
}

func TestLoader_EmptyDir(t *testing.T) {
	loader, err := curriculum.NewLoader(t.TempDir())
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}
	if got := len(loader.Result().Bank.Items); got != 0 {
		t.Errorf("items = %d, want 0 for empty dir", got)
	}
}

func setupTestBank(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	bankDir := filepath.Join(dir, "banks", "cardiology")
	os.MkdirAll(bankDir, 0o755)

	os.WriteFile(filepath.Join(bankDir, "set-1.yaml"), []byte(`
quiz_id: quiz-1
cases:
  - id: case-1
    level: 1
    details: "A 54-year-old presents with chest pain."
items:
  - question: "First-line test?"
    options: ["ECG", "CXR", "Echo", "CT"]
    answer: "ecg"
    system: Cardiovascular
    topic: Ischemia
    reviewed: true
  - question: "Most likely diagnosis?"
    options: ["MI", "PE"]
    answer: "MI"
    case_id: case-1
`), 0o644)

	os.WriteFile(filepath.Join(dir, "cardio-mix.spec.yaml"), []byte(`
systems:
  - name: Cardiovascular
    topics:
      - name: Ischemia
      - name: Arrhythmia
        subtopics: [AF, VT]
  - name: Renal
`), 0o644)

	return dir
}
