package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// OptionCount is fixed: every question carries exactly four answer options.
const OptionCount = 4

type Question struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	QuizID uuid.UUID `json:"quiz_id" gorm:"type:uuid;not null;index"`
	Prompt string    `json:"prompt" gorm:"type:text;not null"`
	// Options holds a JSON array of exactly four strings. Decode via OptionList.
	Options      datatypes.JSON `json:"options" gorm:"type:jsonb;not null"`
	CorrectIndex int            `json:"correct_index" gorm:"not null"`
	Explanation  *string        `json:"explanation,omitempty" gorm:"type:text"`
	OrderIndex   int            `json:"order_index" gorm:"not null"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

// OptionList decodes the stored option column. A row whose options are not a
// four-string array is reported as ErrMalformedRecord rather than silently
// coerced.
func (q *Question) OptionList() ([]string, error) {
	var opts []string
	if err := json.Unmarshal(q.Options, &opts); err != nil {
		return nil, fmt.Errorf("question %s options: %w", q.ID, ErrMalformedRecord)
	}
	if len(opts) != OptionCount {
		return nil, fmt.Errorf("question %s has %d options, want %d: %w", q.ID, len(opts), OptionCount, ErrMalformedRecord)
	}
	return opts, nil
}

// SetOptionList encodes opts into the JSON column, enforcing the four-option
// invariant and a correct index that references an existing option.
func (q *Question) SetOptionList(opts []string) error {
	if len(opts) != OptionCount {
		return fmt.Errorf("a question requires exactly %d options, got %d", OptionCount, len(opts))
	}
	raw, err := json.Marshal(opts)
	if err != nil {
		return err
	}
	q.Options = datatypes.JSON(raw)
	return nil
}

// Validate checks the per-question invariants before persistence.
func (q *Question) Validate() error {
	if q.Prompt == "" {
		return fmt.Errorf("question prompt must not be empty")
	}
	if _, err := q.OptionList(); err != nil {
		return err
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= OptionCount {
		return fmt.Errorf("correct index %d out of range [0,%d]", q.CorrectIndex, OptionCount-1)
	}
	return nil
}
