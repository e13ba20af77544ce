package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"tcf-service/internal/event"
	"tcf-service/internal/models"
	"tcf-service/internal/repository"
	"tcf-service/internal/scoring"
	"tcf-service/internal/session"
)

// Training runs are not placed on the CEFR scale; only full and written
// practice tests produce a level estimate.
const levelNotApplicable = "N/A"

const saveTimeout = 10 * time.Second

type ResultService struct {
	Repo      *repository.ResultRepository
	Publisher *event.EventPublisher
}

func NewResultService(repo *repository.ResultRepository, publisher *event.EventPublisher) *ResultService {
	return &ResultService{Repo: repo, Publisher: publisher}
}

// BuildResult converts a finished session into its persistent record. Scoring
// runs over the recorded answers, the same computation the finished-session
// view shows, so the stored band can never disagree with what the user saw.
func (s *ResultService) BuildResult(sess *session.Session, now time.Time) *models.Result {
	answers := sess.AnswersInOrder()
	sum := scoring.Score(answers)

	level := levelNotApplicable
	if sess.Config.Kind == session.KindPractice {
		level = sum.Level
	}

	return &models.Result{
		UserID:        sess.UserID,
		SessionID:     fmt.Sprintf("%s-%d", sess.Config.Type, now.UnixMilli()),
		Type:          sess.Config.Kind,
		TestName:      sess.Config.Title,
		CEFRLevel:     level,
		TotalScore:    sum.Correct,
		QuestionCount: sum.Total,
		CreatedAt:     now,
		ValidUntil:    now.AddDate(2, 0, 0),
		Answers:       answers,
	}
}

// SaveAsync persists a result without blocking the caller. The session flow
// never waits on the database; a failed save is logged and published so it
// can be retried out of band. onDone, when non-nil, is invoked after the
// attempt with the save error, if any.
func (s *ResultService) SaveAsync(result *models.Result, onDone func(error)) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()

		err := s.Repo.Create(ctx, result)
		if err != nil {
			log.Printf("Failed to save result for session %s: %v", result.SessionID, err)
			event.Emit(s.Publisher, "tcf.result.save_failed", map[string]any{
				"session_id": result.SessionID,
				"user_id":    result.UserID,
				"error":      err.Error(),
			})
		} else {
			event.Emit(s.Publisher, "tcf.result.saved", map[string]any{
				"result_id":  result.ID,
				"session_id": result.SessionID,
				"user_id":    result.UserID,
				"type":       result.Type,
				"score":      result.TotalScore,
				"cefr_level": result.CEFRLevel,
			})
		}
		if onDone != nil {
			onDone(err)
		}
	}()
}

func (s *ResultService) ResultsForUser(ctx context.Context, userID string) ([]models.Result, error) {
	return s.Repo.FindByUser(ctx, userID)
}

// TrendPoint is one attempt on the dashboard progress chart.
type TrendPoint struct {
	Date          time.Time `json:"date"`
	Correct       int       `json:"correct"`
	QuestionCount int       `json:"questionCount"`
	Percentage    float64   `json:"percentage"`
	TestName      string    `json:"testName"`
}

// Overview aggregates a user's history for the dashboard. AverageScore is
// weighted by question count (total correct over total posed), so a short
// training run cannot swamp a full test, and AverageLevel is the CEFR band of
// that weighted percentage.
type Overview struct {
	TotalSessions int            `json:"totalSessions"`
	AverageScore  float64        `json:"averageScore"`
	AverageLevel  string         `json:"averageLevel"`
	LatestLevel   string         `json:"latestLevel"`
	ByType        map[string]int `json:"byType"`
	Trend         []TrendPoint   `json:"trend"`
}

func (s *ResultService) Overview(ctx context.Context, userID string) (*Overview, error) {
	results, err := s.Repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	ov := &Overview{
		AverageLevel: levelNotApplicable,
		LatestLevel:  levelNotApplicable,
		ByType:       make(map[string]int),
	}
	correct, answered := 0, 0
	for _, r := range results {
		ov.TotalSessions++
		ov.ByType[r.Type]++
		correct += r.TotalScore
		answered += r.QuestionCount
		if ov.LatestLevel == levelNotApplicable && r.CEFRLevel != levelNotApplicable {
			ov.LatestLevel = r.CEFRLevel
		}
	}
	if answered > 0 {
		ov.AverageScore = float64(correct) / float64(answered) * 100
		ov.AverageLevel = scoring.CEFRLevel(ov.AverageScore)
	}

	// FindByUser returns newest first; the chart wants chronological order.
	for i := len(results) - 1; i >= 0; i-- {
		r := results[i]
		point := TrendPoint{
			Date:          r.CreatedAt,
			Correct:       r.TotalScore,
			QuestionCount: r.QuestionCount,
			TestName:      r.TestName,
		}
		if r.QuestionCount > 0 {
			point.Percentage = float64(r.TotalScore) / float64(r.QuestionCount) * 100
		}
		ov.Trend = append(ov.Trend, point)
	}
	return ov, nil
}
