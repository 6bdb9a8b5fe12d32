package curriculum

// Option is one answer choice of an item.
type Option struct {
	ID    string `yaml:"id" json:"id"`
	Value string `yaml:"value" json:"value"`
}

// Answer identifies the correct option of an item.
type Answer struct {
	OptionID  string `yaml:"option_id" json:"option_id,omitempty"`
	Text      string `yaml:"text" json:"text"`
	Reference string `yaml:"reference,omitempty" json:"reference,omitempty"`
	Details   string `yaml:"details,omitempty" json:"details,omitempty"`
}

// Subcategory groups items under a named bank section.
type Subcategory struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// Item is a single assessment question.
type Item struct {
	ID           string      `yaml:"id" json:"id"`
	QuizID       string      `yaml:"quiz_id,omitempty" json:"quiz_id,omitempty"`
	CaseID       string      `yaml:"case_id,omitempty" json:"case_id,omitempty"`
	Subcategory  Subcategory `yaml:"subcategory,omitempty" json:"subcategory,omitempty"`
	Subspecialty string      `yaml:"subspecialty,omitempty" json:"subspecialty,omitempty"`
	System       string      `yaml:"system,omitempty" json:"system,omitempty"`
	Topic        string      `yaml:"topic,omitempty" json:"topic,omitempty"`
	Subtopic     string      `yaml:"subtopic,omitempty" json:"subtopic,omitempty"`
	Subject      string      `yaml:"subject,omitempty" json:"subject,omitempty"`
	Keywords     string      `yaml:"keywords,omitempty" json:"keywords,omitempty"`
	Level        int         `yaml:"level,omitempty" json:"level,omitempty"`
	Reviewed     bool        `yaml:"reviewed" json:"reviewed"`
	Question     string      `yaml:"question" json:"question"`
	Options      []Option    `yaml:"options" json:"options"`
	Answer       Answer      `yaml:"answer" json:"answer"`

	// Number is the 1-based position inside a served batch.
	Number int `yaml:"-" json:"number,omitempty"`
	// SealedAnswer replaces Answer on served items when sealing is enabled.
	SealedAnswer string `yaml:"-" json:"sealed_answer,omitempty"`
}

// Case is a leveled content unit that owns several items.
type Case struct {
	ID            string `yaml:"id" json:"id"`
	Level         int    `yaml:"level" json:"level"`
	Details       string `yaml:"details" json:"details"`
	Subject       string `yaml:"subject,omitempty" json:"subject,omitempty"`
	Keywords      string `yaml:"keywords,omitempty" json:"keywords,omitempty"`
	TotalQuestion int    `yaml:"total_question" json:"total_question"`
}

// CategorySpec selects items across a system -> topic -> subtopic hierarchy.
type CategorySpec struct {
	Systems []SystemSpec `yaml:"systems" json:"systems"`
}

// SystemSpec is a top-level category. A system without topics is itself a leaf.
type SystemSpec struct {
	Name   string      `yaml:"name" json:"name"`
	Topics []TopicSpec `yaml:"topics,omitempty" json:"topics,omitempty"`
}

// TopicSpec is a topic leaf, optionally narrowed to a set of subtopics.
type TopicSpec struct {
	Name      string   `yaml:"name" json:"name"`
	Subtopics []string `yaml:"subtopics,omitempty" json:"subtopics,omitempty"`
}

// Leaf is one sampling bucket of a CategorySpec.
type Leaf struct {
	System    string
	Topic     string
	Subtopics []string
}

// Leaves flattens the spec in order: every topic is a leaf, and a system with
// no topics contributes a single system-wide leaf.
func (c CategorySpec) Leaves() []Leaf {
	var leaves []Leaf
	for _, sys := range c.Systems {
		if len(sys.Topics) == 0 {
			leaves = append(leaves, Leaf{System: sys.Name})
			continue
		}
		for _, topic := range sys.Topics {
			leaves = append(leaves, Leaf{
				System:    sys.Name,
				Topic:     topic.Name,
				Subtopics: topic.Subtopics,
			})
		}
	}
	return leaves
}

// IsEmpty returns true if the spec names no systems.
func (c CategorySpec) IsEmpty() bool {
	return len(c.Systems) == 0
}

// Bank is the content of one or more item-bank files.
type Bank struct {
	Items []Item `yaml:"items" json:"items"`
	Cases []Case `yaml:"cases" json:"cases"`
}
