package dto

import (
	"time"

	"github.com/google/uuid"
)

type ErrorResponse struct {
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

type UserResponse struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type QuestionResponse struct {
	ID          uuid.UUID `json:"id"`
	Prompt      string    `json:"prompt"`
	Options     []string  `json:"options"`
	Explanation *string   `json:"explanation,omitempty"`
	OrderIndex  int       `json:"order_index"`
}

type QuizSummaryResponse struct {
	ID               uuid.UUID `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description,omitempty"`
	Topic            string    `json:"topic"`
	Difficulty       string    `json:"difficulty"`
	QuestionCount    int       `json:"question_count"`
	TimeLimitMinutes *int      `json:"time_limit_minutes,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

type QuizDetailResponse struct {
	ID               uuid.UUID          `json:"id"`
	Title            string             `json:"title"`
	Description      string             `json:"description,omitempty"`
	Topic            string             `json:"topic"`
	Difficulty       string             `json:"difficulty"`
	TimeLimitMinutes *int               `json:"time_limit_minutes,omitempty"`
	Questions        []QuestionResponse `json:"questions"`
	CreatedAt        time.Time          `json:"created_at"`
}

// SessionStateResponse mirrors the live session for the client: where the
// user is, what they have answered, and how much time is left.
type SessionStateResponse struct {
	SessionID        uuid.UUID         `json:"session_id"`
	QuizID           uuid.UUID         `json:"quiz_id"`
	State            string            `json:"state"`
	CurrentIndex     int               `json:"current_index"`
	TotalQuestions   int               `json:"total_questions"`
	Answers          map[uuid.UUID]int `json:"answers"`
	CanAdvance       bool              `json:"can_advance"`
	RemainingSeconds *int              `json:"remaining_seconds,omitempty"`
	Result           *SessionResult    `json:"result,omitempty"`
}

type SessionResult struct {
	AttemptID      uuid.UUID `json:"attempt_id"`
	Score          int       `json:"score"`
	CorrectCount   int       `json:"correct_count"`
	TotalQuestions int       `json:"total_questions"`
}

type AttemptSummaryResponse struct {
	ID             uuid.UUID `json:"id"`
	QuizID         uuid.UUID `json:"quiz_id"`
	QuizTitle      string    `json:"quiz_title"`
	Topic          string    `json:"topic"`
	Difficulty     string    `json:"difficulty"`
	Score          int       `json:"score"`
	CorrectCount   int       `json:"correct_count"`
	TotalQuestions int       `json:"total_questions"`
	ElapsedSeconds int       `json:"elapsed_seconds"`
	CompletedAt    time.Time `json:"completed_at"`
}

type DashboardResponse struct {
	TotalQuizzes        int64                    `json:"total_quizzes"`
	TotalAttempts       int                      `json:"total_attempts"`
	AverageScore        int                      `json:"average_score"`
	BestScore           int                      `json:"best_score"`
	TotalElapsedSeconds int                      `json:"total_elapsed_seconds"`
	RecentAttempts      []AttemptSummaryResponse `json:"recent_attempts"`
}

type ScorePoint struct {
	Sequence    int       `json:"sequence"`
	Score       int       `json:"score"`
	CompletedAt time.Time `json:"completed_at"`
}

type DifficultyBucket struct {
	Difficulty   string `json:"difficulty"`
	Count        int    `json:"count"`
	AverageScore int    `json:"average_score"`
}

type TopicBucket struct {
	Topic        string `json:"topic"`
	Count        int    `json:"count"`
	AverageScore int    `json:"average_score"`
	BestScore    int    `json:"best_score"`
}

type AnalyticsResponse struct {
	Window       string             `json:"window"`
	AttemptCount int                `json:"attempt_count"`
	ScoreTrend   []ScorePoint       `json:"score_trend"`
	ByDifficulty []DifficultyBucket `json:"by_difficulty"`
	TopTopics    []TopicBucket      `json:"top_topics"`
	Improvement  int                `json:"improvement"`
}
