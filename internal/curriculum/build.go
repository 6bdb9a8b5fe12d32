package curriculum

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
)

// RawItem is an item as authored in a bank file, before option IDs exist.
type RawItem struct {
	ID            string   `yaml:"id" json:"id"`
	QuizID        string   `yaml:"quiz_id" json:"quiz_id"`
	CaseID        string   `yaml:"case_id" json:"case_id"`
	Subcategory   string   `yaml:"subcategory" json:"subcategory"`
	Subspecialty  string   `yaml:"subspecialty" json:"subspecialty"`
	System        string   `yaml:"system" json:"system"`
	Topic         string   `yaml:"topic" json:"topic"`
	Subtopic      string   `yaml:"subtopic" json:"subtopic"`
	Subject       string   `yaml:"subject" json:"subject"`
	Keywords      string   `yaml:"keywords" json:"keywords"`
	Level         int      `yaml:"level" json:"level"`
	Reviewed      bool     `yaml:"reviewed" json:"reviewed"`
	Question      string   `yaml:"question" json:"question"`
	Options       []string `yaml:"options" json:"options"`
	Answer        string   `yaml:"answer" json:"answer"`
	Reference     string   `yaml:"reference" json:"reference"`
	AnswerDetails string   `yaml:"answer_details" json:"answer_details"`
}

// RawBank is the on-disk shape of a bank file.
type RawBank struct {
	QuizID string    `yaml:"quiz_id" json:"quiz_id"`
	Items  []RawItem `yaml:"items" json:"items"`
	Cases  []Case    `yaml:"cases" json:"cases"`
}

var (
	subcategoryNamespace = uuid.MustParse("3f1c6f4e-5b52-4d0a-9a4e-8c1f6b7f2d10")
	itemNamespace        = uuid.MustParse("8d2a4c1e-0f6b-4e57-b3a9-51c7e2d08f64")
	optionNamespace      = uuid.MustParse("c4e91b07-7a3d-4f28-9e15-2b6d0a8f3c52")
	caseNamespace        = uuid.MustParse("5e0b7d93-2c4a-4a1f-8f6e-d93b1c7a0e28")
)

// SubcategoryID derives a stable subcategory ID from its name, so repeated
// imports of the same subcategory land in the same bucket.
func SubcategoryID(name string) string {
	if name == "" {
		return ""
	}
	return uuid.NewSHA1(subcategoryNamespace, []byte(strings.TrimSpace(name))).String()
}

// ItemID derives a stable item ID from the item's scope (its case, or its
// quiz when it has no case) and its question text.
func ItemID(quizID, caseID, question string) string {
	scope := "case:" + caseID
	if caseID == "" {
		scope = "quiz:" + quizID
	}
	return uuid.NewSHA1(itemNamespace, []byte(scope+"\x00"+question)).String()
}

// OptionID derives a stable option ID from its item and value.
func OptionID(itemID, value string) string {
	return uuid.NewSHA1(optionNamespace, []byte(itemID+"\x00"+value)).String()
}

// CaseID derives a stable ID for a case authored without one.
func CaseID(level int, details string) string {
	return uuid.NewSHA1(caseNamespace, []byte(strconv.Itoa(level)+"\x00"+strings.TrimSpace(details))).String()
}

// BuildItem converts a raw item into a servable item. It returns false if the
// question is empty or the answer matches none of the options. IDs are
// derived from content, so importing the same item twice yields the same
// item and option IDs. Repeated option values are kept once.
func BuildItem(raw RawItem, defaultQuizID string) (Item, bool) {
	question := strings.TrimSpace(raw.Question)
	if question == "" {
		return Item{}, false
	}

	quizID := raw.QuizID
	if quizID == "" && raw.CaseID == "" {
		quizID = defaultQuizID
	}
	id := raw.ID
	if id == "" {
		id = ItemID(quizID, raw.CaseID, question)
	}

	options := make([]Option, 0, len(raw.Options))
	seen := make(map[string]bool, len(raw.Options))
	for _, v := range raw.Options {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		options = append(options, Option{ID: OptionID(id, v), Value: v})
	}

	answerID, ok := MatchAnswer(options, raw.Answer)
	if !ok {
		return Item{}, false
	}

	item := Item{
		ID:           id,
		QuizID:       quizID,
		CaseID:       raw.CaseID,
		Subspecialty: raw.Subspecialty,
		System:       raw.System,
		Topic:        raw.Topic,
		Subtopic:     raw.Subtopic,
		Subject:      raw.Subject,
		Keywords:     raw.Keywords,
		Level:        raw.Level,
		Reviewed:     raw.Reviewed,
		Question:     question,
		Options:      options,
		Answer: Answer{
			OptionID:  answerID,
			Text:      strings.TrimSpace(raw.Answer),
			Reference: raw.Reference,
			Details:   raw.AnswerDetails,
		},
	}
	if raw.Subcategory != "" {
		item.Subcategory = Subcategory{ID: SubcategoryID(raw.Subcategory), Name: raw.Subcategory}
	}
	return item, true
}

// MatchAnswer finds the option whose value equals answer under Unicode case folding.
func MatchAnswer(options []Option, answer string) (string, bool) {
	fold := cases.Fold()
	want := fold.String(strings.TrimSpace(answer))
	if want == "" {
		return "", false
	}
	for _, opt := range options {
		if fold.String(opt.Value) == want {
			return opt.ID, true
		}
	}
	return "", false
}

// BuildResult is the output of BuildBank.
type BuildResult struct {
	Bank Bank
	// ExternalCaseCounts holds item counts for cases referenced by items but
	// not defined in the input; they belong to cases that already exist.
	ExternalCaseCounts map[string]int
	// Skipped counts items dropped for an empty question or unmatched answer.
	Skipped int
}

// BuildBank converts raw banks into items and cases. Questions repeated within
// the same case (or the same quiz, for non-case items) are kept once; the last
// occurrence wins. Each case's TotalQuestion grows by the number of items that
// reference it.
func BuildBank(raws []RawBank) BuildResult {
	type key struct{ scope, question string }

	var bank Bank
	index := make(map[key]int)
	skipped := 0

	for _, rb := range raws {
		for _, raw := range rb.Items {
			item, ok := BuildItem(raw, rb.QuizID)
			if !ok {
				skipped++
				continue
			}
			scope := item.CaseID
			if scope == "" {
				scope = "quiz:" + item.QuizID
			}
			k := key{scope: scope, question: item.Question}
			if i, dup := index[k]; dup {
				bank.Items[i] = item
				continue
			}
			index[k] = len(bank.Items)
			bank.Items = append(bank.Items, item)
		}
		bank.Cases = append(bank.Cases, rb.Cases...)
	}

	counts := make(map[string]int)
	for _, item := range bank.Items {
		if item.CaseID != "" {
			counts[item.CaseID]++
		}
	}

	external := make(map[string]int)
	known := make(map[string]bool, len(bank.Cases))
	for i := range bank.Cases {
		c := &bank.Cases[i]
		if c.ID == "" {
			c.ID = CaseID(c.Level, c.Details)
		}
		known[c.ID] = true
		c.TotalQuestion += counts[c.ID]
	}
	for id, n := range counts {
		if !known[id] {
			external[id] = n
		}
	}

	return BuildResult{Bank: bank, ExternalCaseCounts: external, Skipped: skipped}
}
