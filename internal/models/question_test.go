package models

import (
	"errors"
	"testing"
)

func validQuestion() Question {
	return Question{
		Section:    SectionStructure,
		Difficulty: DifficultyB1,
		Prompt:     "Je ______ du piano tous les jours.",
		Options: []Option{
			{ID: "a", Text: "joue"},
			{ID: "b", Text: "joues"},
			{ID: "c", Text: "jouent"},
			{ID: "d", Text: "jouons"},
		},
		CorrectOptionID: "a",
	}
}

func TestValidateAcceptsWellFormedQuestion(t *testing.T) {
	q := validQuestion()
	if err := q.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsMalformedQuestions(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Question)
		wantErr error
	}{
		{
			name:    "single option",
			mutate:  func(q *Question) { q.Options = q.Options[:1] },
			wantErr: ErrTooFewOptions,
		},
		{
			name:    "duplicate option id",
			mutate:  func(q *Question) { q.Options[1].ID = "a" },
			wantErr: ErrDuplicateOptionID,
		},
		{
			name:    "correct id not among options",
			mutate:  func(q *Question) { q.CorrectOptionID = "z" },
			wantErr: ErrCorrectOptionUnset,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := validQuestion()
			tc.mutate(&q)
			err := q.Validate()
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestValidateRejectsUnknownSectionAndDifficulty(t *testing.T) {
	q := validQuestion()
	q.Section = "speaking"
	if err := q.Validate(); err == nil {
		t.Error("expected error for unknown section")
	}

	q = validQuestion()
	q.Difficulty = "D1"
	if err := q.Validate(); err == nil {
		t.Error("expected error for unknown difficulty")
	}
}

func TestOptionText(t *testing.T) {
	q := validQuestion()
	text, ok := q.OptionText("b")
	if !ok || text != "joues" {
		t.Errorf("expected (joues, true), got (%s, %v)", text, ok)
	}
	if _, ok := q.OptionText("z"); ok {
		t.Error("expected miss for unknown option id")
	}
}
