// Package scoring computes correctness aggregates and CEFR banding over a
// completed answer list. Everything here is pure; the same banding function
// backs the session summary, the results listing and the dashboard so the
// displayed level can never disagree between views.
package scoring

import "tcf-service/internal/models"

type SectionScore struct {
	Correct    int     `json:"correct"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

type Summary struct {
	Correct    int                             `json:"correct"`
	Total      int                             `json:"total"`
	Percentage float64                         `json:"percentage"`
	Level      string                          `json:"level"`
	Sections   map[models.Section]SectionScore `json:"sections"`
}

// Score aggregates an answer list into overall and per-section ratios.
func Score(answers []models.AnswerRecord) Summary {
	summary := Summary{
		Sections: make(map[models.Section]SectionScore),
	}

	for _, a := range answers {
		section := a.Question.Section
		ss := summary.Sections[section]
		ss.Total++
		summary.Total++
		if a.IsCorrect {
			ss.Correct++
			summary.Correct++
		}
		summary.Sections[section] = ss
	}

	for section, ss := range summary.Sections {
		ss.Percentage = percentage(ss.Correct, ss.Total)
		summary.Sections[section] = ss
	}
	summary.Percentage = percentage(summary.Correct, summary.Total)
	summary.Level = CEFRLevel(summary.Percentage)
	return summary
}

func percentage(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(correct) / float64(total) * 100
}

// CEFRLevel maps a percentage score to an estimated CEFR band. The step
// function is total: every input, including 0, lands in a band.
func CEFRLevel(scorePercentage float64) string {
	switch {
	case scorePercentage < 20:
		return "A1"
	case scorePercentage < 40:
		return "A2"
	case scorePercentage < 60:
		return "B1"
	case scorePercentage < 80:
		return "B2"
	case scorePercentage < 90:
		return "C1"
	default:
		return "C2"
	}
}
