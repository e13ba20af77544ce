package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"tcf-service/internal/models"
	"tcf-service/internal/repository"
)

type QuestionService struct {
	Repo *repository.QuestionRepository
}

func NewQuestionService(repo *repository.QuestionRepository) *QuestionService {
	return &QuestionService{Repo: repo}
}

func (s *QuestionService) ListQuestions(ctx context.Context) ([]models.Question, error) {
	return s.Repo.FindAll(ctx)
}

func (s *QuestionService) GetQuestion(ctx context.Context, id string) (*models.Question, error) {
	return s.Repo.FindByID(ctx, id)
}

func (s *QuestionService) CreateQuestion(ctx context.Context, question *models.Question) error {
	if err := question.Validate(); err != nil {
		return err
	}
	return s.Repo.Create(ctx, question)
}

func (s *QuestionService) UpdateQuestion(ctx context.Context, id string, update map[string]any) error {
	return s.Repo.Update(ctx, id, update)
}

func (s *QuestionService) DeleteQuestion(ctx context.Context, id string) error {
	return s.Repo.Delete(ctx, id)
}

// ImportQuestions validates and stores a batch of questions. The batch is
// rejected as a whole on the first invalid entry so a partial import never
// skews the selection pool.
func (s *QuestionService) ImportQuestions(ctx context.Context, questions []models.Question) (int, error) {
	for i := range questions {
		if err := questions[i].Validate(); err != nil {
			return 0, fmt.Errorf("question %d: %w", i, err)
		}
	}
	if len(questions) == 0 {
		return 0, nil
	}
	if err := s.Repo.CreateMany(ctx, questions); err != nil {
		return 0, err
	}
	return len(questions), nil
}

// SeedFromFile loads the bundled question bank when the collection is still
// empty. A missing seed file is not an error; the service just starts with
// whatever the database holds.
func (s *QuestionService) SeedFromFile(ctx context.Context, path string) error {
	if path == "" {
		return nil
	}
	count, err := s.Repo.CountActive(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		log.Printf("Seed file %s not found, skipping seeding", path)
		return nil
	}
	if err != nil {
		return err
	}

	var questions []models.Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return fmt.Errorf("parse seed file %s: %w", path, err)
	}

	imported, err := s.ImportQuestions(ctx, questions)
	if err != nil {
		return fmt.Errorf("seed from %s: %w", path, err)
	}
	log.Printf("Seeded %d questions from %s", imported, path)
	return nil
}
