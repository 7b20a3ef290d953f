package dto

import "github.com/google/uuid"

type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"display_name"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	DisplayName string `json:"display_name" binding:"required"`
}

// GenerateQuizRequest drives topic-based generation. TimeLimitMinutes left
// nil produces an untimed quiz.
type GenerateQuizRequest struct {
	Topic            string `json:"topic" binding:"required"`
	Difficulty       string `json:"difficulty" binding:"required,oneof=easy medium hard"`
	QuestionCount    int    `json:"question_count" binding:"required,min=1,max=20"`
	TimeLimitMinutes *int   `json:"time_limit_minutes" binding:"omitempty,min=1"`
}

type SelectAnswerRequest struct {
	QuestionID  uuid.UUID `json:"question_id" binding:"required"`
	OptionIndex int       `json:"option_index" binding:"min=0,max=3"`
}

type NavigateRequest struct {
	Index int `json:"index"`
}
