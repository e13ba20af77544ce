package session

import (
	"errors"

	"tcf-service/internal/models"
	"tcf-service/internal/selection"
)

var (
	ErrUnknownTestType  = errors.New("unknown test type")
	ErrEmptyPool        = errors.New("no questions available for this test")
	ErrSessionFinished  = errors.New("session already finished")
	ErrForwardJump      = errors.New("cannot jump past the current question")
	ErrNavigationLocked = errors.New("backward navigation is locked until the listening section is complete")
	ErrUnknownOption    = errors.New("selected option does not belong to the current question")
)

// Session is the ephemeral state of one running test. It is owned by a single
// driver, mutated only through Engine transitions, and discarded once the
// terminal Result has been built; only the Result survives.
type Session struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
	Config Config `json:"config"`

	Questions []selection.SelectedQuestion `json:"questions"`

	// Index is the question currently presented; Frontier is the highest
	// index ever reached. Jumps may move Index backward but never past
	// Frontier.
	Index    int `json:"index"`
	Frontier int `json:"frontier"`

	// TimeLeft is the whole-session countdown in seconds. PacingLeft counts
	// down the listening force-advance window and is live only while
	// PacingArmed, which happens when the current question's audio completes.
	TimeLeft    int  `json:"time_left"`
	PacingLeft  int  `json:"pacing_left"`
	PacingArmed bool `json:"pacing_armed"`

	// Selected is the in-progress option for the current question. It is what
	// a forced advance (pacing or total-timer expiry) records.
	Selected *string `json:"selected"`

	// Answers is keyed by session question id; re-answering overwrites.
	Answers map[string]models.AnswerRecord `json:"answers"`

	// AudioConsumed marks listening questions whose audio has played to
	// completion once. Consumed audio is never offered again.
	AudioConsumed map[string]bool `json:"audio_consumed"`

	Finished bool `json:"finished"`
}

// Current returns the question at the presentation cursor.
func (s *Session) Current() selection.SelectedQuestion {
	return s.Questions[s.Index]
}

// AnsweredCount reports how many questions have a recorded answer.
func (s *Session) AnsweredCount() int {
	return len(s.Answers)
}

// AnswersInOrder returns the recorded answers in presentation order.
func (s *Session) AnswersInOrder() []models.AnswerRecord {
	ordered := make([]models.AnswerRecord, 0, len(s.Answers))
	for _, sq := range s.Questions {
		if rec, ok := s.Answers[sq.SessionQuestionID]; ok {
			ordered = append(ordered, rec)
		}
	}
	return ordered
}

// listeningCleared reports whether every listening question has been
// answered. Sessions without listening items clear trivially.
func (s *Session) listeningCleared() bool {
	for _, sq := range s.Questions {
		if sq.Question.Section != models.SectionListening {
			continue
		}
		if _, ok := s.Answers[sq.SessionQuestionID]; !ok {
			return false
		}
	}
	return true
}
