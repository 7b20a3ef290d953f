package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/lshigami/Quizzine/internal/dto"
	"github.com/lshigami/Quizzine/internal/model"
	"github.com/lshigami/Quizzine/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// QuizService persists generated quizzes and serves them back. Quizzes are
// written once by the generation flow and never mutated afterwards.
type QuizService interface {
	CreateFromGenerated(userID uuid.UUID, generated *GeneratedQuiz, topic string, difficulty model.Difficulty, timeLimitMinutes *int) (*dto.QuizDetailResponse, error)
	GetQuizDetails(quizID uuid.UUID) (*dto.QuizDetailResponse, error)
	ListUserQuizzes(userID uuid.UUID) ([]dto.QuizSummaryResponse, error)
}

type quizService struct {
	quizRepo repository.QuizRepository
}

func NewQuizService(quizRepo repository.QuizRepository) QuizService {
	return &quizService{quizRepo: quizRepo}
}

func (s *quizService) CreateFromGenerated(userID uuid.UUID, generated *GeneratedQuiz, topic string, difficulty model.Difficulty, timeLimitMinutes *int) (*dto.QuizDetailResponse, error) {
	quiz := model.Quiz{
		UserID:           userID,
		Title:            generated.Title,
		Topic:            topic,
		Difficulty:       difficulty,
		TimeLimitMinutes: timeLimitMinutes,
	}
	if err := quiz.Validate(); err != nil {
		return nil, err
	}

	for i, gq := range generated.Questions {
		question := model.Question{
			Prompt:       gq.Prompt,
			CorrectIndex: gq.CorrectIndex,
			OrderIndex:   i,
		}
		if err := question.SetOptionList(gq.Options); err != nil {
			return nil, fmt.Errorf("question %d: %w", i+1, err)
		}
		if gq.Explanation != "" {
			explanation := gq.Explanation
			question.Explanation = &explanation
		}
		if err := question.Validate(); err != nil {
			return nil, fmt.Errorf("question %d: %w", i+1, err)
		}
		quiz.Questions = append(quiz.Questions, question)
	}

	if err := s.quizRepo.Create(&quiz); err != nil {
		log.Error().Err(err).Str("userID", userID.String()).Msg("Failed to persist generated quiz")
		return nil, fmt.Errorf("failed to save quiz: %w", err)
	}

	log.Info().
		Str("quizID", quiz.ID.String()).
		Str("topic", topic).
		Int("questions", len(quiz.Questions)).
		Msg("Quiz created from generated content")
	return quizDetail(&quiz)
}

func (s *quizService) GetQuizDetails(quizID uuid.UUID) (*dto.QuizDetailResponse, error) {
	quiz, err := s.quizRepo.FindByIDWithQuestions(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuizNotFound
		}
		log.Error().Err(err).Str("quizID", quizID.String()).Msg("Failed to get quiz details from repository")
		return nil, fmt.Errorf("error fetching quiz: %w", err)
	}
	return quizDetail(quiz)
}

func (s *quizService) ListUserQuizzes(userID uuid.UUID) ([]dto.QuizSummaryResponse, error) {
	quizzes, err := s.quizRepo.FindAllByUser(userID)
	if err != nil {
		log.Error().Err(err).Str("userID", userID.String()).Msg("Failed to list user quizzes")
		return nil, fmt.Errorf("error fetching quizzes: %w", err)
	}

	summaries := make([]dto.QuizSummaryResponse, 0, len(quizzes))
	for _, q := range quizzes {
		var summary dto.QuizSummaryResponse
		if err := copier.Copy(&summary, &q.Quiz); err != nil {
			return nil, fmt.Errorf("error preparing quiz summary: %w", err)
		}
		summary.Difficulty = string(q.Difficulty)
		summary.QuestionCount = q.QuestionCount
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// quizDetail maps a quiz and its questions to the client shape. The correct
// index is intentionally not exposed here; grading happens server-side at
// submission.
func quizDetail(quiz *model.Quiz) (*dto.QuizDetailResponse, error) {
	resp := &dto.QuizDetailResponse{
		ID:               quiz.ID,
		Title:            quiz.Title,
		Description:      quiz.Description,
		Topic:            quiz.Topic,
		Difficulty:       string(quiz.Difficulty),
		TimeLimitMinutes: quiz.TimeLimitMinutes,
		CreatedAt:        quiz.CreatedAt,
		Questions:        make([]dto.QuestionResponse, 0, len(quiz.Questions)),
	}
	for _, q := range quiz.Questions {
		options, err := q.OptionList()
		if err != nil {
			return nil, err
		}
		resp.Questions = append(resp.Questions, dto.QuestionResponse{
			ID:          q.ID,
			Prompt:      q.Prompt,
			Options:     options,
			Explanation: q.Explanation,
			OrderIndex:  q.OrderIndex,
		})
	}
	return resp, nil
}
