package service

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lshigami/Quizzine/internal/dto"
	"github.com/lshigami/Quizzine/internal/model"
)

const (
	SessionInProgress = "in_progress"
	SessionCompleted  = "completed"
)

// Session is one user's live run through a quiz. It exists only in memory;
// the single persistent artifact it produces is the QuizAttempt written at
// submission. Fields are guarded by mu because handler goroutines and the
// countdown goroutine touch the same session.
type Session struct {
	mu sync.Mutex

	ID     uuid.UUID
	UserID uuid.UUID
	Quiz   *model.Quiz

	current    int
	answers    map[uuid.UUID]int
	startedAt  time.Time
	remaining  int // seconds; meaningful only for timed quizzes
	submitting bool
	result     *dto.SessionResult

	done     chan struct{}
	stopOnce sync.Once
}

func newSession(quiz *model.Quiz, userID uuid.UUID, now time.Time) *Session {
	s := &Session{
		ID:        uuid.New(),
		UserID:    userID,
		Quiz:      quiz,
		answers:   make(map[uuid.UUID]int),
		startedAt: now,
		done:      make(chan struct{}),
	}
	if quiz.Timed() {
		s.remaining = *quiz.TimeLimitMinutes * 60
	}
	return s
}

// stop tears the countdown down. Safe to call more than once.
func (s *Session) stop() {
	s.stopOnce.Do(func() { close(s.done) })
}

// ComputeScore is the single scoring rule: an integer percentage,
// round-half-up via math.Round, always in [0,100].
func ComputeScore(correctCount, totalQuestions int) int {
	if totalQuestions == 0 {
		return 0
	}
	return int(math.Round(float64(correctCount) / float64(totalQuestions) * 100))
}

// SelectAnswer records (or overwrites) the selection for a question. It never
// moves the question pointer.
func (s *Session) SelectAnswer(questionID uuid.UUID, optionIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result != nil {
		return ErrSessionCompleted
	}
	if optionIndex < 0 || optionIndex >= model.OptionCount {
		return fmt.Errorf("option index %d out of range [0,%d]", optionIndex, model.OptionCount-1)
	}
	found := false
	for _, q := range s.Quiz.Questions {
		if q.ID == questionID {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("question %s is not part of this quiz", questionID)
	}
	s.answers[questionID] = optionIndex
	return nil
}

// Navigate moves the pointer, clamping the target into [0, N-1]. Jumps are
// unrestricted regardless of answer state; the "next requires an answer"
// rule is surfaced to the client through CanAdvance in the session state.
func (s *Session) Navigate(target int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result != nil {
		return ErrSessionCompleted
	}
	if target < 0 {
		target = 0
	}
	if max := len(s.Quiz.Questions) - 1; target > max {
		target = max
	}
	s.current = target
	return nil
}

// tick consumes one second of the countdown and reports whether the clock
// just ran out. It never drives remaining below zero and does nothing once
// the session is terminal.
func (s *Session) tick() (expired bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result != nil || !s.Quiz.Timed() {
		return false
	}
	if s.remaining > 0 {
		s.remaining--
	}
	return s.remaining == 0
}

// snapshot builds the client-facing view of the session.
func (s *Session) snapshot() *dto.SessionStateResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := SessionInProgress
	if s.result != nil {
		state = SessionCompleted
	}

	answers := make(map[uuid.UUID]int, len(s.answers))
	for k, v := range s.answers {
		answers[k] = v
	}

	canAdvance := false
	if s.current < len(s.Quiz.Questions) {
		_, canAdvance = s.answers[s.Quiz.Questions[s.current].ID]
	}

	resp := &dto.SessionStateResponse{
		SessionID:      s.ID,
		QuizID:         s.Quiz.ID,
		State:          state,
		CurrentIndex:   s.current,
		TotalQuestions: len(s.Quiz.Questions),
		Answers:        answers,
		CanAdvance:     canAdvance,
		Result:         s.result,
	}
	if s.Quiz.Timed() {
		remaining := s.remaining
		resp.RemainingSeconds = &remaining
	}
	return resp
}
