package service

import (
	"tcf-service/internal/models"
	"tcf-service/internal/scoring"
	"tcf-service/internal/session"
)

// QuestionView is what the client sees of a question while the session runs.
// The correct option and the explanation are withheld until the session
// finishes.
type QuestionView struct {
	SessionQuestionID string            `json:"sessionQuestionId"`
	Index             int               `json:"index"`
	Section           models.Section    `json:"section"`
	Difficulty        models.Difficulty `json:"difficulty"`
	Prompt            string            `json:"prompt,omitempty"`
	AudioRef          string            `json:"audioRef,omitempty"`
	ImageRef          string            `json:"imageRef,omitempty"`
	Options           []models.Option   `json:"options"`
	Answered          bool              `json:"answered"`
	AudioConsumed     bool              `json:"audioConsumed,omitempty"`
}

// ReviewItem is the post-session breakdown of a single question.
type ReviewItem struct {
	SessionQuestionID   string         `json:"sessionQuestionId"`
	Section             models.Section `json:"section"`
	Prompt              string         `json:"prompt,omitempty"`
	SelectedOptionID    *string        `json:"selectedOptionId"`
	SelectedOptionText  string         `json:"selectedOptionText,omitempty"`
	CorrectOptionID     string         `json:"correctOptionId"`
	CorrectOptionText   string         `json:"correctOptionText,omitempty"`
	IsCorrect           bool           `json:"isCorrect"`
	Explanation         string         `json:"explanation,omitempty"`
	ExplanationMediaRef string         `json:"explanationMediaRef,omitempty"`
}

type SessionView struct {
	Token            string           `json:"token"`
	Type             session.TestType `json:"type"`
	Title            string           `json:"title"`
	TimeLeft         int              `json:"timeLeft"`
	PacingLeft       int              `json:"pacingLeft"`
	PacingArmed      bool             `json:"pacingArmed"`
	Index            int              `json:"index"`
	Frontier         int              `json:"frontier"`
	SelectedOptionID *string          `json:"selectedOptionId"`
	AnsweredCount    int              `json:"answeredCount"`
	QuestionCount    int              `json:"questionCount"`
	Finished         bool             `json:"finished"`
	Questions        []QuestionView   `json:"questions"`

	// Populated only once Finished is true.
	Summary *scoring.Summary `json:"summary,omitempty"`
	Review  []ReviewItem     `json:"review,omitempty"`
}

// view snapshots a live session into its client representation. Callers must
// not hold ls.mu; the snapshot takes it itself.
func (s *SessionService) view(ls *liveSession) *SessionView {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	st := ls.state

	v := &SessionView{
		Token:            st.Token,
		Type:             st.Config.Type,
		Title:            st.Config.Title,
		TimeLeft:         st.TimeLeft,
		PacingLeft:       st.PacingLeft,
		PacingArmed:      st.PacingArmed,
		Index:            st.Index,
		Frontier:         st.Frontier,
		SelectedOptionID: st.Selected,
		AnsweredCount:    st.AnsweredCount(),
		QuestionCount:    len(st.Questions),
		Finished:         st.Finished,
		Questions:        make([]QuestionView, 0, len(st.Questions)),
	}

	for _, sq := range st.Questions {
		_, answered := st.Answers[sq.SessionQuestionID]
		v.Questions = append(v.Questions, QuestionView{
			SessionQuestionID: sq.SessionQuestionID,
			Index:             sq.Index,
			Section:           sq.Question.Section,
			Difficulty:        sq.Question.Difficulty,
			Prompt:            sq.Question.Prompt,
			AudioRef:          sq.Question.AudioRef,
			ImageRef:          sq.Question.ImageRef,
			Options:           sq.Question.Options,
			Answered:          answered,
			AudioConsumed:     st.AudioConsumed[sq.SessionQuestionID],
		})
	}

	if st.Finished {
		sum := scoring.Score(st.AnswersInOrder())
		v.Summary = &sum
		for _, sq := range st.Questions {
			item := ReviewItem{
				SessionQuestionID:   sq.SessionQuestionID,
				Section:             sq.Question.Section,
				Prompt:              sq.Question.Prompt,
				CorrectOptionID:     sq.Question.CorrectOptionID,
				Explanation:         sq.Question.Explanation,
				ExplanationMediaRef: sq.Question.ExplanationMediaRef,
			}
			if text, ok := sq.Question.OptionText(sq.Question.CorrectOptionID); ok {
				item.CorrectOptionText = text
			}
			if rec, ok := st.Answers[sq.SessionQuestionID]; ok {
				item.SelectedOptionID = rec.SelectedOptionID
				item.IsCorrect = rec.IsCorrect
				if rec.SelectedOptionID != nil {
					if text, ok := sq.Question.OptionText(*rec.SelectedOptionID); ok {
						item.SelectedOptionText = text
					}
				}
			}
			v.Review = append(v.Review, item)
		}
	}

	return v
}
