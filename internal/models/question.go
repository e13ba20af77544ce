package models

import (
	"errors"
	"fmt"
)

type Section string

const (
	SectionListening Section = "listening"
	SectionStructure Section = "structure"
	SectionReading   Section = "reading"
)

// Sections lists all sections in presentation precedence order. Audio-gated
// sessions present listening first so the one-shot audio rule can be enforced
// before free navigation opens up.
var Sections = []Section{SectionListening, SectionStructure, SectionReading}

func (s Section) Valid() bool {
	switch s {
	case SectionListening, SectionStructure, SectionReading:
		return true
	}
	return false
}

type Difficulty string

const (
	DifficultyA1 Difficulty = "A1"
	DifficultyA2 Difficulty = "A2"
	DifficultyB1 Difficulty = "B1"
	DifficultyB2 Difficulty = "B2"
	DifficultyC1 Difficulty = "C1"
	DifficultyC2 Difficulty = "C2"
)

// Difficulties lists the six CEFR levels in ascending order.
var Difficulties = []Difficulty{
	DifficultyA1, DifficultyA2, DifficultyB1, DifficultyB2, DifficultyC1, DifficultyC2,
}

func (d Difficulty) Valid() bool {
	for _, known := range Difficulties {
		if d == known {
			return true
		}
	}
	return false
}

type Option struct {
	ID   string `bson:"id" json:"id"`
	Text string `bson:"text" json:"text"`
}

type Question struct {
	ID                  string     `bson:"_id,omitempty" json:"id"`
	Section             Section    `bson:"section" json:"section"`
	Difficulty          Difficulty `bson:"difficulty" json:"difficulty"`
	Prompt              string     `bson:"prompt,omitempty" json:"prompt,omitempty"`
	AudioRef            string     `bson:"audio_ref,omitempty" json:"audio_ref,omitempty"`
	ImageRef            string     `bson:"image_ref,omitempty" json:"image_ref,omitempty"`
	Options             []Option   `bson:"options" json:"options"`
	CorrectOptionID     string     `bson:"correct_option_id" json:"correct_option_id"`
	Explanation         string     `bson:"explanation,omitempty" json:"explanation,omitempty"`
	ExplanationMediaRef string     `bson:"explanation_media_ref,omitempty" json:"explanation_media_ref,omitempty"`
	Status              string     `bson:"status,omitempty" json:"status,omitempty"`
}

var (
	ErrTooFewOptions      = errors.New("question needs at least two options")
	ErrDuplicateOptionID  = errors.New("option ids must be unique within a question")
	ErrCorrectOptionUnset = errors.New("correct option id must reference one of the options")
)

// Validate enforces the pool invariant: at least two options, unique option
// ids, and exactly one correct option id present among them.
func (q *Question) Validate() error {
	if !q.Section.Valid() {
		return fmt.Errorf("unknown section %q", q.Section)
	}
	if !q.Difficulty.Valid() {
		return fmt.Errorf("unknown difficulty %q", q.Difficulty)
	}
	if len(q.Options) < 2 {
		return ErrTooFewOptions
	}
	seen := make(map[string]bool, len(q.Options))
	correctFound := false
	for _, opt := range q.Options {
		if seen[opt.ID] {
			return ErrDuplicateOptionID
		}
		seen[opt.ID] = true
		if opt.ID == q.CorrectOptionID {
			correctFound = true
		}
	}
	if !correctFound {
		return ErrCorrectOptionUnset
	}
	return nil
}

// OptionText resolves an option id to its display text.
func (q *Question) OptionText(id string) (string, bool) {
	for _, opt := range q.Options {
		if opt.ID == id {
			return opt.Text, true
		}
	}
	return "", false
}
