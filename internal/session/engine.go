package session

import (
	"tcf-service/internal/models"
	"tcf-service/internal/selection"
)

// Engine drives a session through its question list. Every method is a state
// transition over an explicit *Session value; the engine itself holds no
// per-session state, so one engine serves every live session. Timer behavior
// is reduced to Tick so the host scheduler (one call per second) stays
// outside the package and tests can step time synchronously.
type Engine struct {
	pacingSeconds int
}

func NewEngine() *Engine {
	return &Engine{pacingSeconds: PacingSeconds}
}

// Start creates the session state for an already-selected question list.
func (e *Engine) Start(token, userID string, cfg Config, questions []selection.SelectedQuestion) *Session {
	return &Session{
		Token:         token,
		UserID:        userID,
		Config:        cfg,
		Questions:     questions,
		TimeLeft:      cfg.TotalTimeSeconds,
		Answers:       make(map[string]models.AnswerRecord),
		AudioConsumed: make(map[string]bool),
	}
}

// Restart discards all progress and rearms the session over a freshly
// selected question list.
func (e *Engine) Restart(s *Session, questions []selection.SelectedQuestion) {
	s.Questions = questions
	s.Index = 0
	s.Frontier = 0
	s.TimeLeft = s.Config.TotalTimeSeconds
	s.PacingLeft = 0
	s.PacingArmed = false
	s.Selected = nil
	s.Answers = make(map[string]models.AnswerRecord)
	s.AudioConsumed = make(map[string]bool)
	s.Finished = false
}

// SelectOption stores the in-progress choice for the current question without
// confirming it. A forced advance records whatever was stored here.
func (e *Engine) SelectOption(s *Session, optionID string) error {
	if s.Finished {
		return ErrSessionFinished
	}
	sq := s.Current()
	if _, ok := sq.Question.OptionText(optionID); !ok {
		return ErrUnknownOption
	}
	s.Selected = &optionID
	return nil
}

// Confirm records the answer for the current question and advances, or
// finishes when the current question is the last one. A non-nil optionID
// overrides the stored in-progress selection.
func (e *Engine) Confirm(s *Session, optionID *string) error {
	if s.Finished {
		return ErrSessionFinished
	}
	if optionID != nil {
		if err := e.SelectOption(s, *optionID); err != nil {
			return err
		}
	}
	e.recordCurrent(s)

	if s.Index >= len(s.Questions)-1 {
		e.finish(s)
		return nil
	}
	e.moveTo(s, s.Index+1)
	return nil
}

// JumpTo moves the cursor to an already-visited question. The answer in
// progress for the question being left is saved exactly as on the confirm
// path; the cursor never crosses the frontier, and any move away from the
// current question requires the listening section to be fully traversed.
func (e *Engine) JumpTo(s *Session, index int) error {
	if s.Finished {
		return ErrSessionFinished
	}
	if index == s.Index {
		return nil
	}
	if index < 0 || index >= len(s.Questions) || index > s.Frontier {
		return ErrForwardJump
	}
	if !s.listeningCleared() {
		return ErrNavigationLocked
	}
	e.recordCurrent(s)
	e.moveTo(s, index)
	return nil
}

// Tick advances both countdowns by one second. Ticking a finished session is
// a no-op; the driver cancels its ticker on every exit from the active state,
// but a late callback must never mutate a torn-down session.
func (e *Engine) Tick(s *Session) {
	if s.Finished {
		return
	}

	s.TimeLeft--
	if s.TimeLeft <= 0 {
		// Forced finish: the in-progress question is recorded with whatever
		// was selected, possibly nothing.
		e.recordCurrent(s)
		e.finish(s)
		return
	}

	if !s.PacingArmed {
		return
	}
	s.PacingLeft--
	if s.PacingLeft <= 0 {
		// Auto-advance exactly as if the user had confirmed.
		e.recordCurrent(s)
		if s.Index >= len(s.Questions)-1 {
			e.finish(s)
			return
		}
		e.moveTo(s, s.Index+1)
	}
}

// OnAudioEnded reports that the current listening question's audio played to
// completion. First completion marks the audio consumed and arms the pacing
// timer; anything else (wrong question, non-listening item, replayed audio,
// finished session) is ignored.
func (e *Engine) OnAudioEnded(s *Session, sessionQuestionID string) {
	if s.Finished {
		return
	}
	current := s.Current()
	if current.SessionQuestionID != sessionQuestionID {
		return
	}
	if current.Question.Section != models.SectionListening {
		return
	}
	if s.AudioConsumed[sessionQuestionID] {
		return
	}
	s.AudioConsumed[sessionQuestionID] = true
	s.PacingLeft = e.pacingSeconds
	s.PacingArmed = true
}

// ForceFinish ends the session immediately, recording the in-progress
// question first. Used when the user submits early.
func (e *Engine) ForceFinish(s *Session) error {
	if s.Finished {
		return ErrSessionFinished
	}
	e.recordCurrent(s)
	e.finish(s)
	return nil
}

// recordCurrent upserts the answer record for the current question. A nil
// selection is an explicit non-answer and scores as incorrect.
func (e *Engine) recordCurrent(s *Session) {
	sq := s.Current()
	var selected *string
	if s.Selected != nil {
		v := *s.Selected
		selected = &v
	}
	s.Answers[sq.SessionQuestionID] = models.AnswerRecord{
		Question:         sq.Question,
		SelectedOptionID: selected,
		IsCorrect:        selected != nil && *selected == sq.Question.CorrectOptionID,
	}
}

// moveTo repositions the cursor, restores any previously recorded choice for
// the target question, and disarms the pacing timer.
func (e *Engine) moveTo(s *Session, index int) {
	s.Index = index
	if index > s.Frontier {
		s.Frontier = index
	}
	s.Selected = nil
	if rec, ok := s.Answers[s.Current().SessionQuestionID]; ok && rec.SelectedOptionID != nil {
		v := *rec.SelectedOptionID
		s.Selected = &v
	}
	s.PacingArmed = false
	s.PacingLeft = 0
}

func (e *Engine) finish(s *Session) {
	s.Finished = true
	s.PacingArmed = false
	s.PacingLeft = 0
}
