package service

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lshigami/Quizzine/internal/model"
	"github.com/lshigami/Quizzine/internal/repository"
	"gorm.io/gorm"
)

type fakeQuizRepo struct {
	quizzes map[uuid.UUID]*model.Quiz
}

func (f *fakeQuizRepo) Create(q *model.Quiz) error {
	if f.quizzes == nil {
		f.quizzes = make(map[uuid.UUID]*model.Quiz)
	}
	f.quizzes[q.ID] = q
	return nil
}

func (f *fakeQuizRepo) FindByIDWithQuestions(id uuid.UUID) (*model.Quiz, error) {
	q, ok := f.quizzes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return q, nil
}

func (f *fakeQuizRepo) FindAllByUser(userID uuid.UUID) ([]repository.QuizWithQuestionCount, error) {
	var out []repository.QuizWithQuestionCount
	for _, q := range f.quizzes {
		if q.UserID == userID {
			out = append(out, repository.QuizWithQuestionCount{Quiz: *q, QuestionCount: len(q.Questions)})
		}
	}
	return out, nil
}

func (f *fakeQuizRepo) CountByUser(userID uuid.UUID) (int64, error) {
	qs, _ := f.FindAllByUser(userID)
	return int64(len(qs)), nil
}

type fakeAttemptRepo struct {
	mu       sync.Mutex
	attempts []model.QuizAttempt
	failNext bool
	// blockCh, when set, makes Create wait until the channel is closed.
	blockCh chan struct{}
}

func (f *fakeAttemptRepo) Create(a *model.QuizAttempt) error {
	if f.blockCh != nil {
		<-f.blockCh
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext {
		f.failNext = false
		return fmt.Errorf("store unreachable")
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	f.attempts = append(f.attempts, *a)
	return nil
}

func (f *fakeAttemptRepo) FindRecentByUser(userID uuid.UUID, limit int) ([]model.QuizAttempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.QuizAttempt
	for _, a := range f.attempts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeAttemptRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.attempts)
}

// buildQuiz creates an in-memory quiz whose question i has correct index
// correct[i].
func buildQuiz(t *testing.T, userID uuid.UUID, correct []int, limitMinutes *int) *model.Quiz {
	t.Helper()
	quiz := &model.Quiz{
		ID:               uuid.New(),
		UserID:           userID,
		Title:            "Cell Biology Basics",
		Topic:            "biology",
		Difficulty:       model.DifficultyMedium,
		TimeLimitMinutes: limitMinutes,
	}
	for i, c := range correct {
		q := model.Question{
			ID:           uuid.New(),
			QuizID:       quiz.ID,
			Prompt:       fmt.Sprintf("Question %d", i+1),
			CorrectIndex: c,
			OrderIndex:   i,
		}
		if err := q.SetOptionList([]string{"A", "B", "C", "D"}); err != nil {
			t.Fatal(err)
		}
		quiz.Questions = append(quiz.Questions, q)
	}
	return quiz
}

func newTestService(quizzes ...*model.Quiz) (*sessionService, *fakeAttemptRepo) {
	fq := &fakeQuizRepo{quizzes: make(map[uuid.UUID]*model.Quiz)}
	for _, q := range quizzes {
		fq.quizzes[q.ID] = q
	}
	fa := &fakeAttemptRepo{}
	return &sessionService{
		quizRepo:    fq,
		attemptRepo: fa,
		sessions:    make(map[uuid.UUID]*Session),
		now:         time.Now,
	}, fa
}

func TestComputeScore(t *testing.T) {
	tests := []struct {
		correct, total, want int
	}{
		{0, 4, 0},
		{3, 4, 75},
		{4, 4, 100},
		{1, 3, 33},
		{2, 3, 67},
		{0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_of_%d", tt.correct, tt.total), func(t *testing.T) {
			got := ComputeScore(tt.correct, tt.total)
			if got != tt.want {
				t.Errorf("ComputeScore(%d, %d) = %d, want %d", tt.correct, tt.total, got, tt.want)
			}
			if got < 0 || got > 100 {
				t.Errorf("score %d out of [0,100]", got)
			}
		})
	}
}

func TestStartUnknownQuizRoutesAway(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Start(uuid.New(), uuid.New())
	if !errors.Is(err, ErrQuizNotFound) {
		t.Errorf("Start() error = %v, want ErrQuizNotFound", err)
	}
}

func TestSubmitScoresUnansweredAsIncorrect(t *testing.T) {
	userID := uuid.New()
	quiz := buildQuiz(t, userID, []int{0, 1, 2, 3}, nil)
	svc, fa := newTestService(quiz)

	state, err := svc.Start(quiz.ID, userID)
	if err != nil {
		t.Fatal(err)
	}

	// Answer the first three correctly, leave the fourth unanswered.
	for i := 0; i < 3; i++ {
		if _, err := svc.SelectAnswer(state.SessionID, userID, quiz.Questions[i].ID, i); err != nil {
			t.Fatal(err)
		}
	}

	result, err := svc.Submit(state.SessionID, userID)
	if err != nil {
		t.Fatal(err)
	}
	if result.CorrectCount != 3 {
		t.Errorf("CorrectCount = %d, want 3", result.CorrectCount)
	}
	if result.Score != 75 {
		t.Errorf("Score = %d, want 75", result.Score)
	}
	if fa.count() != 1 {
		t.Errorf("attempt records = %d, want 1", fa.count())
	}

	stored := fa.attempts[0]
	answers, err := stored.AnswerMap()
	if err != nil {
		t.Fatal(err)
	}
	if len(answers) != 3 {
		t.Errorf("stored answer map has %d entries, want 3 (unanswered questions get no entry)", len(answers))
	}
}

func TestSelectAnswerOverwritesAndValidates(t *testing.T) {
	userID := uuid.New()
	quiz := buildQuiz(t, userID, []int{2}, nil)
	svc, _ := newTestService(quiz)

	state, err := svc.Start(quiz.ID, userID)
	if err != nil {
		t.Fatal(err)
	}
	qid := quiz.Questions[0].ID

	if _, err := svc.SelectAnswer(state.SessionID, userID, qid, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SelectAnswer(state.SessionID, userID, qid, 2); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SelectAnswer(state.SessionID, userID, qid, 4); err == nil {
		t.Error("option index 4 should be rejected")
	}
	if _, err := svc.SelectAnswer(state.SessionID, userID, uuid.New(), 0); err == nil {
		t.Error("answering a foreign question should be rejected")
	}

	result, err := svc.Submit(state.SessionID, userID)
	if err != nil {
		t.Fatal(err)
	}
	if result.CorrectCount != 1 {
		t.Errorf("overwritten answer not used: CorrectCount = %d, want 1", result.CorrectCount)
	}
}

func TestNavigateClamps(t *testing.T) {
	userID := uuid.New()
	quiz := buildQuiz(t, userID, []int{0, 0, 0, 0, 0}, nil)
	svc, _ := newTestService(quiz)

	state, err := svc.Start(quiz.ID, userID)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		target, want int
	}{
		{-1, 0},
		{0, 0},
		{3, 3},
		{5, 4},
		{100, 4},
	}
	for _, tt := range tests {
		got, err := svc.Navigate(state.SessionID, userID, tt.target)
		if err != nil {
			t.Fatal(err)
		}
		if got.CurrentIndex != tt.want {
			t.Errorf("Navigate(%d): CurrentIndex = %d, want %d", tt.target, got.CurrentIndex, tt.want)
		}
	}
}

func TestCanAdvanceTracksCurrentQuestion(t *testing.T) {
	userID := uuid.New()
	quiz := buildQuiz(t, userID, []int{0, 1}, nil)
	svc, _ := newTestService(quiz)

	state, err := svc.Start(quiz.ID, userID)
	if err != nil {
		t.Fatal(err)
	}
	if state.CanAdvance {
		t.Error("fresh session should not allow advancing past an unanswered question")
	}
	state, err = svc.SelectAnswer(state.SessionID, userID, quiz.Questions[0].ID, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !state.CanAdvance {
		t.Error("answered current question should allow advancing")
	}
}

func TestTimedSessionAutoSubmitsExactlyOnce(t *testing.T) {
	userID := uuid.New()
	limit := 1
	quiz := buildQuiz(t, userID, []int{0, 1}, &limit)
	svc, fa := newTestService(quiz)

	sess := newSession(quiz, userID, time.Now())
	svc.sessions[sess.ID] = sess

	if sess.remaining != 60 {
		t.Fatalf("remaining = %d, want 60", sess.remaining)
	}

	// Drive the countdown the way runCountdown does, without wall-clock
	// ticks.
	submissions := 0
	for i := 0; i < 60; i++ {
		if sess.tick() {
			if _, err := svc.submit(sess); err != nil {
				t.Fatalf("auto submit failed: %v", err)
			}
			submissions++
		}
	}
	if submissions != 1 {
		t.Errorf("auto submissions = %d, want 1", submissions)
	}
	if fa.count() != 1 {
		t.Errorf("attempt records = %d, want 1", fa.count())
	}

	state := sess.snapshot()
	if state.State != SessionCompleted {
		t.Errorf("state = %q, want %q", state.State, SessionCompleted)
	}
	if state.RemainingSeconds == nil || *state.RemainingSeconds != 0 {
		t.Errorf("remaining = %v, want 0", state.RemainingSeconds)
	}

	// Further ticks must be inert.
	for i := 0; i < 10; i++ {
		if sess.tick() {
			t.Fatal("tick after completion should never report expiry")
		}
	}
	if *sess.snapshot().RemainingSeconds != 0 {
		t.Error("remaining time must never go negative")
	}
}

func TestUntimedSessionNeverAutoSubmits(t *testing.T) {
	userID := uuid.New()
	quiz := buildQuiz(t, userID, []int{0}, nil)
	svc, fa := newTestService(quiz)

	sess := newSession(quiz, userID, time.Now())
	svc.sessions[sess.ID] = sess

	for i := 0; i < 3600; i++ {
		if sess.tick() {
			t.Fatal("untimed session reported countdown expiry")
		}
	}
	if fa.count() != 0 {
		t.Errorf("attempt records = %d, want 0", fa.count())
	}
}

func TestSubmitInFlightGuard(t *testing.T) {
	userID := uuid.New()
	quiz := buildQuiz(t, userID, []int{0}, nil)
	svc, fa := newTestService(quiz)
	fa.blockCh = make(chan struct{})

	state, err := svc.Start(quiz.ID, userID)
	if err != nil {
		t.Fatal(err)
	}

	firstDone := make(chan error, 1)
	go func() {
		_, err := svc.Submit(state.SessionID, userID)
		firstDone <- err
	}()

	// Wait for the first submit to reach the blocked repository call.
	deadline := time.After(2 * time.Second)
	for {
		sess, _ := svc.lookup(state.SessionID, userID)
		sess.mu.Lock()
		inFlight := sess.submitting
		sess.mu.Unlock()
		if inFlight {
			break
		}
		select {
		case <-deadline:
			t.Fatal("first submit never reached the repository")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	if _, err := svc.Submit(state.SessionID, userID); !errors.Is(err, ErrSubmitInFlight) {
		t.Errorf("second submit error = %v, want ErrSubmitInFlight", err)
	}

	close(fa.blockCh)
	if err := <-firstDone; err != nil {
		t.Fatalf("first submit failed: %v", err)
	}
	if fa.count() != 1 {
		t.Errorf("attempt records = %d, want 1", fa.count())
	}
}

func TestSubmitRetryAfterPersistenceFailure(t *testing.T) {
	userID := uuid.New()
	quiz := buildQuiz(t, userID, []int{0}, nil)
	svc, fa := newTestService(quiz)
	fa.failNext = true

	state, err := svc.Start(quiz.ID, userID)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Submit(state.SessionID, userID); err == nil {
		t.Fatal("submit should surface the persistence failure")
	}

	// Session must remain open and retryable.
	got, err := svc.Get(state.SessionID, userID)
	if err != nil {
		t.Fatal(err)
	}
	if got.State != SessionInProgress {
		t.Errorf("state after failed submit = %q, want %q", got.State, SessionInProgress)
	}

	if _, err := svc.Submit(state.SessionID, userID); err != nil {
		t.Fatalf("retry submit failed: %v", err)
	}
	if fa.count() != 1 {
		t.Errorf("attempt records = %d, want 1", fa.count())
	}

	if _, err := svc.Submit(state.SessionID, userID); !errors.Is(err, ErrSessionCompleted) {
		t.Errorf("submit after completion error = %v, want ErrSessionCompleted", err)
	}
}

func TestOperationsRejectedAfterCompletion(t *testing.T) {
	userID := uuid.New()
	quiz := buildQuiz(t, userID, []int{0, 1}, nil)
	svc, _ := newTestService(quiz)

	state, err := svc.Start(quiz.ID, userID)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Submit(state.SessionID, userID); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.SelectAnswer(state.SessionID, userID, quiz.Questions[0].ID, 0); !errors.Is(err, ErrSessionCompleted) {
		t.Errorf("SelectAnswer after completion error = %v, want ErrSessionCompleted", err)
	}
	if _, err := svc.Navigate(state.SessionID, userID, 1); !errors.Is(err, ErrSessionCompleted) {
		t.Errorf("Navigate after completion error = %v, want ErrSessionCompleted", err)
	}
}

func TestSessionOwnership(t *testing.T) {
	userID := uuid.New()
	quiz := buildQuiz(t, userID, []int{0}, nil)
	svc, _ := newTestService(quiz)

	state, err := svc.Start(quiz.ID, userID)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Get(state.SessionID, uuid.New()); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("foreign user Get error = %v, want ErrSessionNotFound", err)
	}
}

func TestCloseRemovesSession(t *testing.T) {
	userID := uuid.New()
	limit := 5
	quiz := buildQuiz(t, userID, []int{0}, &limit)
	svc, _ := newTestService(quiz)

	state, err := svc.Start(quiz.ID, userID)
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Close(state.SessionID, userID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Get(state.SessionID, userID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get after Close error = %v, want ErrSessionNotFound", err)
	}
}
