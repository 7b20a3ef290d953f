package repository

import (
	"github.com/google/uuid"
	"github.com/lshigami/Quizzine/internal/model"
	"gorm.io/gorm"
)

// AttemptRepository deliberately has no update or delete: an attempt record
// is immutable once created.
type AttemptRepository interface {
	Create(attempt *model.QuizAttempt) error
	// FindRecentByUser returns the user's attempts with their quizzes,
	// newest completion first, capped at limit.
	FindRecentByUser(userID uuid.UUID, limit int) ([]model.QuizAttempt, error)
}

type attemptRepository struct {
	db *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) AttemptRepository {
	return &attemptRepository{db: db}
}

func (r *attemptRepository) Create(attempt *model.QuizAttempt) error {
	return r.db.Create(attempt).Error
}

func (r *attemptRepository) FindRecentByUser(userID uuid.UUID, limit int) ([]model.QuizAttempt, error) {
	var attempts []model.QuizAttempt
	err := r.db.
		Preload("Quiz").
		Where("user_id = ?", userID).
		Order("completed_at DESC").
		Limit(limit).
		Find(&attempts).Error
	return attempts, err
}
