package models

import "time"

// AnswerRecord captures one answered (or skipped) question inside a result.
// The full question is denormalized so later review survives pool edits.
type AnswerRecord struct {
	Question         Question `bson:"question" json:"question"`
	SelectedOptionID *string  `bson:"selected_option_id" json:"selected_option_id"`
	IsCorrect        bool     `bson:"is_correct" json:"is_correct"`
}

// Result is the persisted record of a completed session. It is append-only
// and owned by the user; is_correct is frozen at write time and never
// recomputed even if scoring rules change.
type Result struct {
	ID            string         `bson:"_id,omitempty" json:"id"`
	UserID        string         `bson:"user_id" json:"user_id"`
	SessionID     string         `bson:"session_id" json:"session_id"`
	Type          string         `bson:"type" json:"type"` // "practice" or "training"
	TestName      string         `bson:"test_name" json:"test_name"`
	CEFRLevel     string         `bson:"cefr_level" json:"cefr_level"` // "N/A" for training
	TotalScore    int            `bson:"total_score" json:"total_score"` // count of correct answers
	QuestionCount int            `bson:"question_count" json:"question_count"`
	CreatedAt     time.Time      `bson:"created_at" json:"created_at"`
	ValidUntil    time.Time      `bson:"valid_until" json:"valid_until"`
	Answers       []AnswerRecord `bson:"answers" json:"answers"`
}
