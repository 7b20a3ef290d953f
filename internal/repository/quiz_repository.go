package repository

import (
	"github.com/google/uuid"
	"github.com/lshigami/Quizzine/internal/model"
	"gorm.io/gorm"
)

// QuizWithQuestionCount carries a quiz row plus the size of its question
// set, without loading the questions themselves.
type QuizWithQuestionCount struct {
	model.Quiz
	QuestionCount int
}

type QuizRepository interface {
	// Create persists the quiz and its questions in one transaction.
	Create(quiz *model.Quiz) error
	FindByIDWithQuestions(id uuid.UUID) (*model.Quiz, error)
	FindAllByUser(userID uuid.UUID) ([]QuizWithQuestionCount, error)
	CountByUser(userID uuid.UUID) (int64, error)
}

type quizRepository struct {
	db *gorm.DB
}

func NewQuizRepository(db *gorm.DB) QuizRepository {
	return &quizRepository{db: db}
}

func (r *quizRepository) Create(quiz *model.Quiz) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		// GORM creates the associated questions along with the quiz.
		return tx.Create(quiz).Error
	})
}

func (r *quizRepository) FindByIDWithQuestions(id uuid.UUID) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.db.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("questions.order_index ASC")
	}).First(&quiz, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (r *quizRepository) FindAllByUser(userID uuid.UUID) ([]QuizWithQuestionCount, error) {
	var results []QuizWithQuestionCount
	err := r.db.Model(&model.Quiz{}).
		Select("quizzes.*, (SELECT COUNT(*) FROM questions WHERE questions.quiz_id = quizzes.id AND questions.deleted_at IS NULL) as question_count").
		Where("quizzes.user_id = ?", userID).
		Where("quizzes.deleted_at IS NULL").
		Order("quizzes.created_at DESC").
		Scan(&results).Error
	return results, err
}

func (r *quizRepository) CountByUser(userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&model.Quiz{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
