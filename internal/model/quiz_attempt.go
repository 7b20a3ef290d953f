package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// QuizAttempt is one completed run of a quiz. Attempts are written exactly
// once at submission and never updated or deleted afterwards.
type QuizAttempt struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	QuizID uuid.UUID `json:"quiz_id" gorm:"type:uuid;not null;index"`
	Quiz   Quiz      `json:"quiz,omitempty" gorm:"foreignKey:QuizID"`
	UserID uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	// Answers is a JSON object mapping question id to the selected option
	// index. Unanswered questions have no entry. Decode via AnswerMap.
	Answers        datatypes.JSON `json:"answers" gorm:"type:jsonb;not null"`
	Score          int            `json:"score" gorm:"not null"`
	CorrectCount   int            `json:"correct_count" gorm:"not null"`
	TotalQuestions int            `json:"total_questions" gorm:"not null"`
	ElapsedSeconds int            `json:"elapsed_seconds" gorm:"not null"`
	CompletedAt    time.Time      `json:"completed_at" gorm:"not null;index"`
	CreatedAt      time.Time      `json:"created_at"`
}

func (a *QuizAttempt) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// AnswerMap decodes the stored answer column. Anything other than an object
// of question-id → integer option index is reported as ErrMalformedRecord.
func (a *QuizAttempt) AnswerMap() (map[uuid.UUID]int, error) {
	var raw map[string]int
	if err := json.Unmarshal(a.Answers, &raw); err != nil {
		return nil, fmt.Errorf("attempt %s answers: %w", a.ID, ErrMalformedRecord)
	}
	answers := make(map[uuid.UUID]int, len(raw))
	for k, v := range raw {
		id, err := uuid.Parse(k)
		if err != nil {
			return nil, fmt.Errorf("attempt %s answer key %q: %w", a.ID, k, ErrMalformedRecord)
		}
		answers[id] = v
	}
	return answers, nil
}

// SetAnswerMap encodes answers into the JSON column.
func (a *QuizAttempt) SetAnswerMap(answers map[uuid.UUID]int) error {
	raw := make(map[string]int, len(answers))
	for id, idx := range answers {
		raw[id.String()] = idx
	}
	encoded, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	a.Answers = datatypes.JSON(encoded)
	return nil
}
