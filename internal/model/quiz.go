package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Difficulty is set once at quiz creation. Exactly three values are valid.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

type Quiz struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index"`
	Title       string     `json:"title" gorm:"not null"`
	Description string     `json:"description,omitempty"`
	Topic       string     `json:"topic" gorm:"index"`
	Difficulty  Difficulty `json:"difficulty" gorm:"type:varchar(16);not null"`
	// TimeLimitMinutes is nil for untimed quizzes; when set it must be > 0.
	TimeLimitMinutes *int           `json:"time_limit_minutes,omitempty"`
	Questions        []Question     `json:"questions,omitempty" gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

func (q *Quiz) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

// Timed reports whether the quiz runs against a countdown.
func (q *Quiz) Timed() bool {
	return q.TimeLimitMinutes != nil && *q.TimeLimitMinutes > 0
}

// Validate checks the invariants that must hold before a quiz is persisted:
// a valid difficulty and, when timing is configured, a positive limit.
func (q *Quiz) Validate() error {
	if !q.Difficulty.Valid() {
		return fmt.Errorf("difficulty must be one of easy, medium, hard, got %q", q.Difficulty)
	}
	if q.TimeLimitMinutes != nil && *q.TimeLimitMinutes <= 0 {
		return fmt.Errorf("time limit must be a positive number of minutes, got %d", *q.TimeLimitMinutes)
	}
	return nil
}
