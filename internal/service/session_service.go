package service

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"tcf-service/internal/gate"
	"tcf-service/internal/models"
	"tcf-service/internal/repository"
	"tcf-service/internal/selection"
	"tcf-service/internal/session"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("session not found")

// sessionRetention is how long a finished session stays readable after its
// result is handed to persistence. The grace period lets a client that missed
// the finishing response (timer expiry between polls) still fetch the review
// view; after that the state is discarded and only the Result survives.
const sessionRetention = 2 * time.Minute

// GateDeniedError carries the user-facing reason a session start was refused
// (cooldown still running, premium-only test).
type GateDeniedError struct {
	Message string
}

func (e *GateDeniedError) Error() string {
	return e.Message
}

// liveSession pairs a running session with the mutex serializing all
// transitions on it and the cancel func that stops its clock driver.
type liveSession struct {
	mu        sync.Mutex
	state     *session.Session
	cancel    context.CancelFunc
	finalized bool
}

// SessionService owns every running session. Sessions live only in memory;
// nothing about them touches the database until they finish and their result
// is written. A crashed service loses in-flight sessions, which matches how
// an abandoned browser tab loses them too.
type SessionService struct {
	QuestionRepo *repository.QuestionRepository
	Results      *ResultService
	Gate         *gate.Gate

	engine   *session.Engine
	selector *selection.Selector

	// retireAfter is how long a finalized session stays in the registry; zero
	// means immediate eviction. persist hands a finished session to result
	// storage; tests stub it out.
	retireAfter time.Duration
	persist     func(*session.Session)

	mu   sync.Mutex
	live map[string]*liveSession
}

func NewSessionService(questionRepo *repository.QuestionRepository, results *ResultService, g *gate.Gate) *SessionService {
	s := &SessionService{
		QuestionRepo: questionRepo,
		Results:      results,
		Gate:         g,
		engine:       session.NewEngine(),
		selector:     selection.NewSelector(nil),
		retireAfter:  sessionRetention,
		live:         make(map[string]*liveSession),
	}
	s.persist = func(st *session.Session) {
		result := s.Results.BuildResult(st, time.Now())
		s.Results.SaveAsync(result, nil)
	}
	return s
}

// ListTestTypes returns the catalog of available tests.
func (s *SessionService) ListTestTypes() []session.Config {
	return session.TestTypes()
}

// StartSession checks the access gate, draws a fresh stratified question set
// and spins up the session clock. It returns the client view of the new
// session.
func (s *SessionService) StartSession(ctx context.Context, userID string, testType string) (*SessionView, error) {
	cfg, err := session.ConfigFor(session.TestType(testType))
	if err != nil {
		return nil, err
	}

	if s.Gate != nil {
		decision, err := s.Gate.CanStartSession(ctx, userID, cfg.Type)
		if err != nil {
			return nil, err
		}
		if !decision.Allowed {
			return nil, &GateDeniedError{Message: decision.Message}
		}
	}

	questions, err := s.draw(ctx, cfg)
	if err != nil {
		return nil, err
	}

	token := uuid.NewString()
	state := s.engine.Start(token, userID, cfg, questions)

	ls := &liveSession{state: state}
	s.mu.Lock()
	s.live[token] = ls
	s.mu.Unlock()
	s.startClock(ls)

	if s.Gate != nil {
		if err := s.Gate.MarkStarted(ctx, userID, cfg.Type); err != nil {
			log.Printf("Failed to record session start for user %s: %v", userID, err)
		}
	}

	return s.view(ls), nil
}

// draw loads the active pool for the sections this test uses and runs the
// stratified selector over it.
func (s *SessionService) draw(ctx context.Context, cfg session.Config) ([]selection.SelectedQuestion, error) {
	var sections []models.Section
	for _, sec := range models.Sections {
		if cfg.Quotas[sec] > 0 {
			sections = append(sections, sec)
		}
	}

	pool, err := s.QuestionRepo.FindBySections(ctx, sections)
	if err != nil {
		return nil, err
	}

	selected := s.selector.Select(pool, selection.Criteria{
		Quotas:     cfg.Quotas,
		AudioGated: cfg.AudioGated(),
	})
	if len(selected) == 0 {
		return nil, session.ErrEmptyPool
	}
	return selected, nil
}

// startClock runs the 1Hz driver for a session. Each tick takes the session
// lock, advances the countdowns and finalizes the session once it reaches its
// terminal state.
func (s *SessionService) startClock(ls *liveSession) {
	ctx, cancel := context.WithCancel(context.Background())
	ls.mu.Lock()
	ls.cancel = cancel
	ls.mu.Unlock()

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if s.clockTick(ctx, ls) {
					return
				}
			}
		}
	}()
}

// clockTick advances the session by one second and reports whether the driver
// should stop. The cancellation re-check under the lock keeps a tick that was
// already in flight when Restart cancelled the old driver from reaching the
// fresh state.
func (s *SessionService) clockTick(ctx context.Context, ls *liveSession) bool {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if ctx.Err() != nil {
		return true
	}
	s.engine.Tick(ls.state)
	if ls.state.Finished {
		s.finalizeLocked(ls)
		return true
	}
	return false
}

// finalizeLocked stops the clock, hands the finished session off to result
// persistence and schedules the registry eviction. It runs at most once per
// session run and expects ls.mu held.
func (s *SessionService) finalizeLocked(ls *liveSession) {
	if ls.finalized {
		return
	}
	ls.finalized = true
	if ls.cancel != nil {
		ls.cancel()
	}
	s.persist(ls.state)

	token := ls.state.Token
	if s.retireAfter > 0 {
		time.AfterFunc(s.retireAfter, func() { s.retire(token) })
		return
	}
	s.mu.Lock()
	delete(s.live, token)
	s.mu.Unlock()
}

// retire evicts a finalized session from the registry. A session restarted
// during the retention window is live again and stays.
func (s *SessionService) retire(token string) {
	s.mu.Lock()
	ls, ok := s.live[token]
	s.mu.Unlock()
	if !ok {
		return
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if !ls.finalized {
		return
	}
	s.mu.Lock()
	delete(s.live, token)
	s.mu.Unlock()
}

func (s *SessionService) lookup(token, userID string) (*liveSession, error) {
	s.mu.Lock()
	ls, ok := s.live[token]
	s.mu.Unlock()
	if !ok || ls.state.UserID != userID {
		return nil, ErrSessionNotFound
	}
	return ls, nil
}

// SelectOption marks an option as the in-progress choice for the current
// question without committing it.
func (s *SessionService) SelectOption(token, userID, optionID string) (*SessionView, error) {
	return s.transition(token, userID, func(st *session.Session) error {
		return s.engine.SelectOption(st, optionID)
	})
}

// ConfirmAnswer commits an answer for the current question and advances. A
// non-nil optionID overrides the in-progress selection.
func (s *SessionService) ConfirmAnswer(token, userID string, optionID *string) (*SessionView, error) {
	return s.transition(token, userID, func(st *session.Session) error {
		return s.engine.Confirm(st, optionID)
	})
}

// JumpTo moves the presentation cursor to an already-visited question.
func (s *SessionService) JumpTo(token, userID string, index int) (*SessionView, error) {
	return s.transition(token, userID, func(st *session.Session) error {
		return s.engine.JumpTo(st, index)
	})
}

// AudioEnded reports that the audio of a listening question played to
// completion, which arms the per-question pacing timer.
func (s *SessionService) AudioEnded(token, userID, sessionQuestionID string) (*SessionView, error) {
	return s.transition(token, userID, func(st *session.Session) error {
		s.engine.OnAudioEnded(st, sessionQuestionID)
		return nil
	})
}

// FinishSession ends the session immediately, recording whatever is selected
// on the current question.
func (s *SessionService) FinishSession(token, userID string) (*SessionView, error) {
	return s.transition(token, userID, func(st *session.Session) error {
		return s.engine.ForceFinish(st)
	})
}

// RestartSession draws a fresh question set for the same test and resets the
// session in place. The access gate is not consulted again; a restart belongs
// to the run that already passed it.
func (s *SessionService) RestartSession(ctx context.Context, token, userID string) (*SessionView, error) {
	ls, err := s.lookup(token, userID)
	if err != nil {
		return nil, err
	}

	questions, err := s.draw(ctx, ls.state.Config)
	if err != nil {
		return nil, err
	}

	ls.mu.Lock()
	if ls.cancel != nil {
		ls.cancel()
	}
	s.engine.Restart(ls.state, questions)
	ls.finalized = false
	ls.mu.Unlock()

	s.startClock(ls)
	return s.view(ls), nil
}

// GetSession returns the current client view of a session.
func (s *SessionService) GetSession(token, userID string) (*SessionView, error) {
	ls, err := s.lookup(token, userID)
	if err != nil {
		return nil, err
	}
	return s.view(ls), nil
}

// transition runs one engine step under the session lock and finalizes the
// session if the step ended it.
func (s *SessionService) transition(token, userID string, step func(*session.Session) error) (*SessionView, error) {
	ls, err := s.lookup(token, userID)
	if err != nil {
		return nil, err
	}

	ls.mu.Lock()
	err = step(ls.state)
	if err == nil && ls.state.Finished {
		s.finalizeLocked(ls)
	}
	ls.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return s.view(ls), nil
}

// Close stops every session clock. Running sessions are finalized so their
// results are not lost on shutdown.
func (s *SessionService) Close() {
	s.mu.Lock()
	sessions := make([]*liveSession, 0, len(s.live))
	for _, ls := range s.live {
		sessions = append(sessions, ls)
	}
	s.mu.Unlock()

	for _, ls := range sessions {
		ls.mu.Lock()
		if !ls.state.Finished {
			if err := s.engine.ForceFinish(ls.state); err == nil {
				s.finalizeLocked(ls)
			}
		} else {
			s.finalizeLocked(ls)
		}
		ls.mu.Unlock()
	}
}
