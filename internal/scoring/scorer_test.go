package scoring

import (
	"math"
	"testing"

	"tcf-service/internal/models"
)

func answer(section models.Section, correct bool) models.AnswerRecord {
	selected := "a"
	return models.AnswerRecord{
		Question: models.Question{
			Section:    section,
			Difficulty: models.DifficultyB1,
			Options: []models.Option{
				{ID: "a", Text: "a"},
				{ID: "b", Text: "b"},
			},
			CorrectOptionID: "a",
		},
		SelectedOptionID: &selected,
		IsCorrect:        correct,
	}
}

func TestScorePercentage(t *testing.T) {
	answers := []models.AnswerRecord{
		answer(models.SectionReading, true),
		answer(models.SectionReading, true),
		answer(models.SectionReading, false),
	}

	summary := Score(answers)

	if summary.Correct != 2 || summary.Total != 3 {
		t.Errorf("expected 2/3, got %d/%d", summary.Correct, summary.Total)
	}
	if math.Abs(summary.Percentage-66.666) > 0.01 {
		t.Errorf("expected ~66.67%%, got %.3f", summary.Percentage)
	}
	if summary.Level != "B2" {
		t.Errorf("expected B2, got %s", summary.Level)
	}
}

func TestScoreEmptyListNoDivisionByZero(t *testing.T) {
	summary := Score(nil)
	if summary.Percentage != 0 {
		t.Errorf("expected 0%%, got %f", summary.Percentage)
	}
	if summary.Level != "A1" {
		t.Errorf("expected A1 for 0%%, got %s", summary.Level)
	}
}

func TestScorePerSectionBreakdown(t *testing.T) {
	answers := []models.AnswerRecord{
		answer(models.SectionListening, true),
		answer(models.SectionListening, false),
		answer(models.SectionStructure, true),
		answer(models.SectionReading, false),
	}

	summary := Score(answers)

	listening := summary.Sections[models.SectionListening]
	if listening.Correct != 1 || listening.Total != 2 || listening.Percentage != 50 {
		t.Errorf("listening: got %+v", listening)
	}
	structure := summary.Sections[models.SectionStructure]
	if structure.Correct != 1 || structure.Total != 1 || structure.Percentage != 100 {
		t.Errorf("structure: got %+v", structure)
	}
	reading := summary.Sections[models.SectionReading]
	if reading.Correct != 0 || reading.Total != 1 || reading.Percentage != 0 {
		t.Errorf("reading: got %+v", reading)
	}
}

func TestCEFRLevelBoundaries(t *testing.T) {
	cases := []struct {
		percentage float64
		want       string
	}{
		{0, "A1"},
		{19, "A1"},
		{20, "A2"},
		{39, "A2"},
		{40, "B1"},
		{59.9, "B1"},
		{60, "B2"},
		{79.9, "B2"},
		{80, "C1"},
		{89.9, "C1"},
		{90, "C2"},
		{100, "C2"},
	}

	for _, tc := range cases {
		if got := CEFRLevel(tc.percentage); got != tc.want {
			t.Errorf("CEFRLevel(%.1f) = %s, want %s", tc.percentage, got, tc.want)
		}
	}
}

func TestCEFRLevelMonotonic(t *testing.T) {
	order := map[string]int{"A1": 0, "A2": 1, "B1": 2, "B2": 3, "C1": 4, "C2": 5}
	prev := 0
	for p := 0.0; p <= 100.0; p += 0.5 {
		cur := order[CEFRLevel(p)]
		if cur < prev {
			t.Fatalf("banding not monotonic at %.1f%%", p)
		}
		prev = cur
	}
}
