package curriculum_test

import (
	"testing"

	"github.com/p-n-ai/pai-quiz/internal/curriculum"
)

func TestBuildItem(t *testing.T) {
	tests := []struct {
		name   string
		raw    curriculum.RawItem
		wantOK bool
	}{
		{"matches case-insensitively", curriculum.RawItem{Question: "Q", Options: []string{"Alpha", "Beta"}, Answer: "BETA"}, true},
		{"no matching option", curriculum.RawItem{Question: "Q", Options: []string{"Alpha", "Beta"}, Answer: "Gamma"}, false},
		{"empty question", curriculum.RawItem{Question: "  ", Options: []string{"Alpha"}, Answer: "Alpha"}, false},
		{"empty answer", curriculum.RawItem{Question: "Q", Options: []string{"Alpha"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, ok := curriculum.BuildItem(tt.raw, "quiz-1")
			if ok != tt.wantOK {
				t.Fatalf("BuildItem() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if item.ID == "" {
				t.Error("ID should be generated")
			}
			if item.QuizID != "quiz-1" {
				t.Errorf("QuizID = %q, want quiz-1", item.QuizID)
			}
			if item.Answer.OptionID != item.Options[1].ID {
				t.Errorf("Answer.OptionID = %q, want %q", item.Answer.OptionID, item.Options[1].ID)
			}
		})
	}
}

func TestBuildItem_CaseItemHasNoDefaultQuiz(t *testing.T) {
	item, ok := curriculum.BuildItem(curriculum.RawItem{
		Question: "Q", Options: []string{"a"}, Answer: "a", CaseID: "case-1",
	}, "quiz-1")
	if !ok {
		t.Fatal("BuildItem() returned false")
	}
	if item.QuizID != "" {
		t.Errorf("QuizID = %q, want empty for case-bound item", item.QuizID)
	}
}

func TestSubcategoryID_Stable(t *testing.T) {
	a := curriculum.SubcategoryID("Cardiology")
	b := curriculum.SubcategoryID(" Cardiology ")
	if a == "" || a != b {
		t.Errorf("SubcategoryID not stable: %q vs %q", a, b)
	}
	if curriculum.SubcategoryID("") != "" {
		t.Error("SubcategoryID(\"\") should be empty")
	}
}

func TestBuildBank(t *testing.T) {
	raws := []curriculum.RawBank{
		{
			QuizID: "quiz-1",
			Cases:  []curriculum.Case{{ID: "case-1", Level: 1, TotalQuestion: 2}},
			Items: []curriculum.RawItem{
				{Question: "Q1", Options: []string{"a", "b"}, Answer: "a"},
				{Question: "Q1", Options: []string{"a", "b"}, Answer: "b"},
				{Question: "C1", Options: []string{"a"}, Answer: "a", CaseID: "case-1"},
				{Question: "X1", Options: []string{"a"}, Answer: "a", CaseID: "case-old"},
				{Question: "bad", Options: []string{"a"}, Answer: "z"},
			},
		},
	}

	res := curriculum.BuildBank(raws)

	if len(res.Bank.Items) != 3 {
		t.Fatalf("items = %d, want 3", len(res.Bank.Items))
	}
	first := res.Bank.Items[0]
	if first.Answer.Text != "b" {
		t.Errorf("duplicate question should keep last occurrence, answer = %q", first.Answer.Text)
	}
	if res.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", res.Skipped)
	}
	if res.Bank.Cases[0].TotalQuestion != 3 {
		t.Errorf("case-1 TotalQuestion = %d, want 3", res.Bank.Cases[0].TotalQuestion)
	}
	if res.ExternalCaseCounts["case-old"] != 1 {
		t.Errorf("ExternalCaseCounts[case-old] = %d, want 1", res.ExternalCaseCounts["case-old"])
	}
}

func TestCategorySpec_Leaves(t *testing.T) {
	spec := curriculum.CategorySpec{Systems: []curriculum.SystemSpec{
		{Name: "A", Topics: []curriculum.TopicSpec{{Name: "a1"}, {Name: "a2", Subtopics: []string{"x"}}}},
		{Name: "B"},
	}}

	leaves := spec.Leaves()
	want := []curriculum.Leaf{
		{System: "A", Topic: "a1"},
		{System: "A", Topic: "a2", Subtopics: []string{"x"}},
		{System: "B"},
	}
	if len(leaves) != len(want) {
		t.Fatalf("Leaves() = %d, want %d", len(leaves), len(want))
	}
	for i := range want {
		if leaves[i].System != want[i].System || leaves[i].Topic != want[i].Topic || len(leaves[i].Subtopics) != len(want[i].Subtopics) {
			t.Errorf("leaf %d = %+v, want %+v", i, leaves[i], want[i])
		}
	}
	if spec.IsEmpty() {
		t.Error("IsEmpty() = true, want false")
	}
}

func TestBuildItem_StableIDs(t *testing.T) {
	raw := curriculum.RawItem{Question: "Q?", Options: []string{"A", "B", "A"}, Answer: "b"}

	first, ok := curriculum.BuildItem(raw, "quiz-1")
	if !ok {
		t.Fatal("BuildItem() returned false")
	}
	second, _ := curriculum.BuildItem(raw, "quiz-1")
	if first.ID != second.ID || first.Answer.OptionID != second.Answer.OptionID {
		t.Errorf("ids changed between builds: %s/%s vs %s/%s",
			first.ID, first.Answer.OptionID, second.ID, second.Answer.OptionID)
	}
	if len(first.Options) != 2 {
		t.Errorf("options = %d, want 2 (repeated value dropped)", len(first.Options))
	}

	other, _ := curriculum.BuildItem(raw, "quiz-2")
	if other.ID == first.ID {
		t.Error("same question in another quiz should get another id")
	}
}
