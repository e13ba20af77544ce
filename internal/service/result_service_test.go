package service

import (
	"fmt"
	"testing"
	"time"

	"tcf-service/internal/models"
	"tcf-service/internal/selection"
	"tcf-service/internal/session"
)

func strPtr(s string) *string { return &s }

func finishedSession(t *testing.T, testType session.TestType, total, answered, correct int) *session.Session {
	t.Helper()
	cfg, err := session.ConfigFor(testType)
	if err != nil {
		t.Fatalf("ConfigFor(%s): %v", testType, err)
	}

	s := &session.Session{
		Token:    "tok-1",
		UserID:   "user-1",
		Config:   cfg,
		Answers:  map[string]models.AnswerRecord{},
		Finished: true,
	}
	for i := 0; i < total; i++ {
		q := models.Question{
			ID:         fmt.Sprintf("db-%d", i),
			Section:    models.SectionReading,
			Difficulty: models.DifficultyB1,
			Options: []models.Option{
				{ID: "a", Text: "oui"},
				{ID: "b", Text: "non"},
			},
			CorrectOptionID: "a",
		}
		sq := selection.SelectedQuestion{
			SessionQuestionID: fmt.Sprintf("q-%d", i),
			Index:             i,
			Question:          q,
		}
		s.Questions = append(s.Questions, sq)
		if i < answered {
			picked := "b"
			if i < correct {
				picked = "a"
			}
			s.Answers[sq.SessionQuestionID] = models.AnswerRecord{
				Question:         q,
				SelectedOptionID: strPtr(picked),
				IsCorrect:        i < correct,
			}
		}
	}
	return s
}

func TestBuildResultScoresRecordedAnswers(t *testing.T) {
	svc := NewResultService(nil, nil)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	// 2 correct out of the 3 recorded answers; the 2 never-reached questions
	// do not enter the record.
	sess := finishedSession(t, session.TestWritten, 5, 3, 2)
	result := svc.BuildResult(sess, now)

	if result.TotalScore != 2 {
		t.Errorf("TotalScore = %d, want 2", result.TotalScore)
	}
	if result.QuestionCount != 3 {
		t.Errorf("QuestionCount = %d, want 3", result.QuestionCount)
	}
	if len(result.Answers) != 3 {
		t.Errorf("len(Answers) = %d, want 3", len(result.Answers))
	}
	// 2/3 lands in the 60-80 band.
	if result.CEFRLevel != "B2" {
		t.Errorf("CEFRLevel = %q, want B2", result.CEFRLevel)
	}
	if result.Type != session.KindPractice {
		t.Errorf("Type = %q, want %q", result.Type, session.KindPractice)
	}
	if result.UserID != "user-1" {
		t.Errorf("UserID = %q", result.UserID)
	}
}

func TestBuildResultSessionIDAndValidity(t *testing.T) {
	svc := NewResultService(nil, nil)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	sess := finishedSession(t, session.TestWritten, 2, 2, 2)
	result := svc.BuildResult(sess, now)

	wantID := fmt.Sprintf("written-%d", now.UnixMilli())
	if result.SessionID != wantID {
		t.Errorf("SessionID = %q, want %q", result.SessionID, wantID)
	}
	if !result.CreatedAt.Equal(now) {
		t.Errorf("CreatedAt = %v, want %v", result.CreatedAt, now)
	}
	if want := now.AddDate(2, 0, 0); !result.ValidUntil.Equal(want) {
		t.Errorf("ValidUntil = %v, want %v", result.ValidUntil, want)
	}
}

func TestBuildResultTrainingHasNoLevel(t *testing.T) {
	svc := NewResultService(nil, nil)

	sess := finishedSession(t, session.TestTrainingReading, 4, 4, 4)
	result := svc.BuildResult(sess, time.Now())

	if result.CEFRLevel != levelNotApplicable {
		t.Errorf("CEFRLevel = %q, want %q", result.CEFRLevel, levelNotApplicable)
	}
	if result.TotalScore != 4 {
		t.Errorf("TotalScore = %d, want 4", result.TotalScore)
	}
	if result.Type != session.KindTraining {
		t.Errorf("Type = %q, want %q", result.Type, session.KindTraining)
	}
}

func TestBuildResultEmptySession(t *testing.T) {
	svc := NewResultService(nil, nil)

	sess := finishedSession(t, session.TestWritten, 0, 0, 0)
	result := svc.BuildResult(sess, time.Now())

	if result.TotalScore != 0 {
		t.Errorf("TotalScore = %d, want 0", result.TotalScore)
	}
	if result.QuestionCount != 0 {
		t.Errorf("QuestionCount = %d, want 0", result.QuestionCount)
	}
}
