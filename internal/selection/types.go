package selection

import "tcf-service/internal/models"

// SelectedQuestion is a pool question bound to one session, carrying a
// session-local id and sequence index. The session-local id is what answer
// records and the audio-consumption set reference.
type SelectedQuestion struct {
	SessionQuestionID string          `json:"session_question_id"`
	Index             int             `json:"index"`
	Question          models.Question `json:"question"`
}

// Criteria describes what one session needs from the pool.
type Criteria struct {
	// Quotas maps each requested section to the number of questions wanted.
	// Sections absent from the map (or with a zero quota) contribute nothing.
	Quotas map[models.Section]int `json:"quotas"`

	// AudioGated keeps sections in fixed precedence order
	// (listening, structure, reading) instead of shuffling the whole list.
	AudioGated bool `json:"audio_gated"`
}

// RequestedTotal sums the per-section quotas.
func (c Criteria) RequestedTotal() int {
	total := 0
	for _, n := range c.Quotas {
		total += n
	}
	return total
}
