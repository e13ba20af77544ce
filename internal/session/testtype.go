package session

import "tcf-service/internal/models"

// TestType is the closed set of supported session shapes. Keeping it as an
// enum (instead of a string-keyed lookup table) lets ConfigFor stay exhaustive
// and turns an unknown slug into a single well-defined error.
type TestType string

const (
	TestFull              TestType = "full"
	TestWritten           TestType = "written"
	TestTrainingListening TestType = "training-listening"
	TestTrainingStructure TestType = "training-structure"
	TestTrainingReading   TestType = "training-reading"
)

const (
	KindPractice = "practice"
	KindTraining = "training"
)

// PacingSeconds is the per-question countdown for listening items. It starts
// only once the question's audio has played to completion.
const PacingSeconds = 30

// Section time budgets in seconds, from the official TCF timing.
const (
	listeningSeconds = 25 * 60
	structureSeconds = 15 * 60
	readingSeconds   = 45 * 60
)

// Section question counts, from the official TCF composition.
const (
	listeningCount = 29
	structureCount = 18
	readingCount   = 29
)

// Config carries everything a session needs to know about its test type.
type Config struct {
	Type             TestType               `json:"type"`
	Title            string                 `json:"title"`
	Kind             string                 `json:"kind"` // practice or training
	Quotas           map[models.Section]int `json:"quotas"`
	TotalTimeSeconds int                    `json:"total_time_seconds"`
}

// AudioGated reports whether the session carries listening items and thus
// needs section precedence, one-shot audio and the pacing timer.
func (c Config) AudioGated() bool {
	return c.Quotas[models.SectionListening] > 0
}

// ConfigFor resolves a test type to its session configuration.
func ConfigFor(t TestType) (Config, error) {
	switch t {
	case TestFull:
		return Config{
			Type:  TestFull,
			Title: "Full Practice Test",
			Kind:  KindPractice,
			Quotas: map[models.Section]int{
				models.SectionListening: listeningCount,
				models.SectionStructure: structureCount,
				models.SectionReading:   readingCount,
			},
			TotalTimeSeconds: listeningSeconds + structureSeconds + readingSeconds,
		}, nil
	case TestWritten:
		return Config{
			Type:  TestWritten,
			Title: "Grammar & Reading",
			Kind:  KindPractice,
			Quotas: map[models.Section]int{
				models.SectionStructure: structureCount,
				models.SectionReading:   readingCount,
			},
			TotalTimeSeconds: structureSeconds + readingSeconds,
		}, nil
	case TestTrainingListening:
		return Config{
			Type:             TestTrainingListening,
			Title:            "Training: Listening",
			Kind:             KindTraining,
			Quotas:           map[models.Section]int{models.SectionListening: listeningCount},
			TotalTimeSeconds: listeningSeconds,
		}, nil
	case TestTrainingStructure:
		return Config{
			Type:             TestTrainingStructure,
			Title:            "Training: Structure",
			Kind:             KindTraining,
			Quotas:           map[models.Section]int{models.SectionStructure: structureCount},
			TotalTimeSeconds: structureSeconds,
		}, nil
	case TestTrainingReading:
		return Config{
			Type:             TestTrainingReading,
			Title:            "Training: Reading",
			Kind:             KindTraining,
			Quotas:           map[models.Section]int{models.SectionReading: readingCount},
			TotalTimeSeconds: readingSeconds,
		}, nil
	default:
		return Config{}, ErrUnknownTestType
	}
}

// TestTypes lists every supported type, for the public catalog endpoint.
func TestTypes() []Config {
	all := []TestType{
		TestFull, TestWritten,
		TestTrainingListening, TestTrainingStructure, TestTrainingReading,
	}
	configs := make([]Config, 0, len(all))
	for _, t := range all {
		cfg, err := ConfigFor(t)
		if err != nil {
			continue
		}
		configs = append(configs, cfg)
	}
	return configs
}
