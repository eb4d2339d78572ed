package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/permalearn/assessment-service/internal/models"
	"github.com/permalearn/assessment-service/internal/repositories"
)

// shortAnswerMatchThreshold is the minimum fraction of answer keywords
// that must appear in the submission for a short answer to count as
// correct. Deliberately lenient: this is keyword overlap, not exact
// grading.
const shortAnswerMatchThreshold = 0.6

// keywordMinLength filters connector words ("a", "of", "to") out of the
// short-answer keyword set.
const keywordMinLength = 2

type gradingService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewGradingService(repo repositories.Repository, logger *slog.Logger) GradingService {
	return &gradingService{
		repo:   repo,
		logger: logger,
	}
}

// ScoreAttempt grades a submitted answer set against the question list.
// Pure computation: no persistence, no retries. A zero-point question set
// grades to 0/failed rather than dividing by zero.
func (s *gradingService) ScoreAttempt(questions []models.Question, answers map[uint]string, passingScore int) (*ScoreResult, error) {
	if questions == nil || len(answers) == 0 {
		return nil, ErrInvalidSubmission
	}

	if passingScore <= 0 {
		passingScore = models.DefaultPassingScore
	}

	result := &ScoreResult{
		Results: make([]models.QuestionResult, 0, len(questions)),
	}

	for i, question := range questions {
		submitted := answers[question.ID]
		correct := isAnswerCorrect(&question, submitted)

		earned := 0
		if correct {
			earned = question.Points
		}

		result.TotalPoints += question.Points
		result.EarnedPoints += earned
		result.Results = append(result.Results, models.QuestionResult{
			QuestionIndex: i,
			QuestionID:    question.ID,
			Question:      question.Prompt,
			UserAnswer:    submitted,
			CorrectAnswer: question.CorrectAnswer,
			IsCorrect:     correct,
			Points:        earned,
		})
	}

	if result.TotalPoints > 0 {
		result.Score = int(math.Round(100 * float64(result.EarnedPoints) / float64(result.TotalPoints)))
	}
	result.Passed = result.Score >= passingScore

	return result, nil
}

// ScoreTestSubmission loads the test's questions and grades the answers
// against its configured passing score.
func (s *gradingService) ScoreTestSubmission(ctx context.Context, testID uint, answers map[uint]string) (*ScoreResult, error) {
	if len(answers) == 0 {
		return nil, ErrInvalidSubmission
	}

	test, err := s.repo.ModuleTest().GetByIDWithQuestions(ctx, testID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestNotFound
		}
		return nil, NewStorageError("load module test", err)
	}

	result, err := s.ScoreAttempt(test.Questions, answers, test.EffectivePassingScore())
	if err != nil {
		return nil, fmt.Errorf("failed to score submission for test %d: %w", testID, err)
	}

	s.logger.Info("Scored test submission",
		"test_id", testID,
		"score", result.Score,
		"passed", result.Passed,
		"questions", len(test.Questions))

	return result, nil
}

// isAnswerCorrect applies the type-specific correctness rule.
func isAnswerCorrect(question *models.Question, submitted string) bool {
	submitted = strings.TrimSpace(submitted)
	if submitted == "" {
		return false
	}

	switch question.Type {
	case models.MultipleChoice, models.TrueFalse:
		return strings.EqualFold(submitted, strings.TrimSpace(question.CorrectAnswer))
	case models.ShortAnswer:
		return matchesKeywords(question.CorrectAnswer, submitted)
	default:
		return false
	}
}

// matchesKeywords implements the fuzzy short-answer rule: the correct
// answer is reduced to keywords longer than keywordMinLength, and each
// keyword matches if any submitted word contains it as a substring. The
// item is correct when the matched fraction reaches the threshold.
func matchesKeywords(correctAnswer, submitted string) bool {
	keywords := extractKeywords(correctAnswer)
	if len(keywords) == 0 {
		// Answer key is all connector-length words; fall back to plain
		// case-insensitive comparison.
		return strings.EqualFold(strings.TrimSpace(submitted), strings.TrimSpace(correctAnswer))
	}

	submittedWords := strings.Fields(strings.ToLower(submitted))

	matched := 0
	for _, keyword := range keywords {
		for _, word := range submittedWords {
			if strings.Contains(word, keyword) {
				matched++
				break
			}
		}
	}

	return float64(matched)/float64(len(keywords)) >= shortAnswerMatchThreshold
}

func extractKeywords(answer string) []string {
	var keywords []string
	for _, word := range strings.Fields(strings.ToLower(answer)) {
		if len(word) > keywordMinLength {
			keywords = append(keywords, word)
		}
	}
	return keywords
}
