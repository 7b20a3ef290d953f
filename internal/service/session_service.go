package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lshigami/Quizzine/internal/dto"
	"github.com/lshigami/Quizzine/internal/model"
	"github.com/lshigami/Quizzine/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// SessionService owns every live quiz session: it creates them from stored
// quizzes, applies the in-progress operations, runs the countdown for timed
// quizzes and turns a submission into exactly one QuizAttempt record.
type SessionService interface {
	Start(quizID, userID uuid.UUID) (*dto.SessionStateResponse, error)
	Get(sessionID, userID uuid.UUID) (*dto.SessionStateResponse, error)
	SelectAnswer(sessionID, userID, questionID uuid.UUID, optionIndex int) (*dto.SessionStateResponse, error)
	Navigate(sessionID, userID uuid.UUID, target int) (*dto.SessionStateResponse, error)
	Submit(sessionID, userID uuid.UUID) (*dto.SessionResult, error)
	Close(sessionID, userID uuid.UUID) error
}

type sessionService struct {
	quizRepo    repository.QuizRepository
	attemptRepo repository.AttemptRepository

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session

	now func() time.Time
}

func NewSessionService(quizRepo repository.QuizRepository, attemptRepo repository.AttemptRepository) SessionService {
	return &sessionService{
		quizRepo:    quizRepo,
		attemptRepo: attemptRepo,
		sessions:    make(map[uuid.UUID]*Session),
		now:         time.Now,
	}
}

func (s *sessionService) Start(quizID, userID uuid.UUID) (*dto.SessionStateResponse, error) {
	quiz, err := s.quizRepo.FindByIDWithQuestions(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuizNotFound
		}
		log.Error().Err(err).Str("quizID", quizID.String()).Msg("Start session: quiz lookup failed")
		return nil, fmt.Errorf("error fetching quiz: %w", err)
	}
	if len(quiz.Questions) == 0 {
		return nil, fmt.Errorf("quiz %s has no questions", quizID)
	}

	sess := newSession(quiz, userID, s.now())

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	if quiz.Timed() {
		go s.runCountdown(sess)
	}

	log.Info().
		Str("sessionID", sess.ID.String()).
		Str("quizID", quizID.String()).
		Bool("timed", quiz.Timed()).
		Msg("Quiz session started")
	return sess.snapshot(), nil
}

// runCountdown ticks once per second until the session completes, is closed,
// or the clock runs out. Hitting zero triggers exactly one automatic submit;
// whether it succeeds or not, the loop exits afterwards.
func (s *sessionService) runCountdown(sess *Session) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-sess.done:
			return
		case <-ticker.C:
			if sess.tick() {
				if _, err := s.submit(sess); err != nil && !errors.Is(err, ErrSessionCompleted) {
					log.Error().Err(err).Str("sessionID", sess.ID.String()).Msg("Automatic submission failed; session stays open for a manual retry")
				}
				return
			}
		}
	}
}

func (s *sessionService) lookup(sessionID, userID uuid.UUID) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok || sess.UserID != userID {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *sessionService) Get(sessionID, userID uuid.UUID) (*dto.SessionStateResponse, error) {
	sess, err := s.lookup(sessionID, userID)
	if err != nil {
		return nil, err
	}
	return sess.snapshot(), nil
}

func (s *sessionService) SelectAnswer(sessionID, userID, questionID uuid.UUID, optionIndex int) (*dto.SessionStateResponse, error) {
	sess, err := s.lookup(sessionID, userID)
	if err != nil {
		return nil, err
	}
	if err := sess.SelectAnswer(questionID, optionIndex); err != nil {
		return nil, err
	}
	return sess.snapshot(), nil
}

func (s *sessionService) Navigate(sessionID, userID uuid.UUID, target int) (*dto.SessionStateResponse, error) {
	sess, err := s.lookup(sessionID, userID)
	if err != nil {
		return nil, err
	}
	if err := sess.Navigate(target); err != nil {
		return nil, err
	}
	return sess.snapshot(), nil
}

func (s *sessionService) Submit(sessionID, userID uuid.UUID) (*dto.SessionResult, error) {
	sess, err := s.lookup(sessionID, userID)
	if err != nil {
		return nil, err
	}
	return s.submit(sess)
}

// submit grades the session and persists the attempt. On a persistence
// failure the session stays InProgress so the user can retry; the in-flight
// flag keeps a rapid double submit from writing two records.
func (s *sessionService) submit(sess *Session) (*dto.SessionResult, error) {
	sess.mu.Lock()
	if sess.result != nil {
		sess.mu.Unlock()
		return nil, ErrSessionCompleted
	}
	if sess.submitting {
		sess.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	sess.submitting = true

	answers := make(map[uuid.UUID]int, len(sess.answers))
	for k, v := range sess.answers {
		answers[k] = v
	}
	quiz := sess.Quiz
	startedAt := sess.startedAt
	sess.mu.Unlock()

	correctCount := 0
	for _, q := range quiz.Questions {
		if idx, ok := answers[q.ID]; ok && idx == q.CorrectIndex {
			correctCount++
		}
	}
	total := len(quiz.Questions)
	score := ComputeScore(correctCount, total)
	completedAt := s.now()
	elapsed := int(completedAt.Sub(startedAt).Seconds())

	attempt := model.QuizAttempt{
		QuizID:         quiz.ID,
		UserID:         sess.UserID,
		Score:          score,
		CorrectCount:   correctCount,
		TotalQuestions: total,
		ElapsedSeconds: elapsed,
		CompletedAt:    completedAt,
	}
	if err := attempt.SetAnswerMap(answers); err != nil {
		sess.mu.Lock()
		sess.submitting = false
		sess.mu.Unlock()
		return nil, fmt.Errorf("encoding answers: %w", err)
	}

	err := s.attemptRepo.Create(&attempt)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.submitting = false
	if err != nil {
		log.Error().Err(err).Str("sessionID", sess.ID.String()).Msg("Failed to persist quiz attempt")
		return nil, fmt.Errorf("failed to save attempt: %w", err)
	}

	sess.result = &dto.SessionResult{
		AttemptID:      attempt.ID,
		Score:          score,
		CorrectCount:   correctCount,
		TotalQuestions: total,
	}
	sess.stop()

	log.Info().
		Str("sessionID", sess.ID.String()).
		Str("attemptID", attempt.ID.String()).
		Int("score", score).
		Msg("Quiz attempt recorded")
	return sess.result, nil
}

// Close removes the session and stops its countdown. Called when the client
// leaves the quiz-taking view without submitting.
func (s *sessionService) Close(sessionID, userID uuid.UUID) error {
	sess, err := s.lookup(sessionID, userID)
	if err != nil {
		return err
	}
	sess.stop()
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	return nil
}
