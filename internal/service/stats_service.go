package service

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lshigami/Quizzine/internal/dto"
	"github.com/lshigami/Quizzine/internal/model"
	"github.com/lshigami/Quizzine/internal/repository"
	"github.com/rs/zerolog/log"
)

// attemptFetchLimit caps how much history the views work over. There is no
// pagination; the views compute over whatever this fetch returns.
const attemptFetchLimit = 200

// StatsService computes the dashboard, history and analytics views. All
// derivations are pure functions over the fetched attempt list, recomputed
// per request.
type StatsService interface {
	Dashboard(userID uuid.UUID) (*dto.DashboardResponse, error)
	History(userID uuid.UUID, search, difficulty, sortBy string) ([]dto.AttemptSummaryResponse, error)
	Analytics(userID uuid.UUID, window string) (*dto.AnalyticsResponse, error)
}

type statsService struct {
	quizRepo    repository.QuizRepository
	attemptRepo repository.AttemptRepository
	now         func() time.Time
}

func NewStatsService(quizRepo repository.QuizRepository, attemptRepo repository.AttemptRepository) StatsService {
	return &statsService{quizRepo: quizRepo, attemptRepo: attemptRepo, now: time.Now}
}

func (s *statsService) Dashboard(userID uuid.UUID) (*dto.DashboardResponse, error) {
	quizCount, err := s.quizRepo.CountByUser(userID)
	if err != nil {
		log.Error().Err(err).Str("userID", userID.String()).Msg("Dashboard: quiz count failed")
		return nil, fmt.Errorf("error counting quizzes: %w", err)
	}
	attempts, err := s.attemptRepo.FindRecentByUser(userID, attemptFetchLimit)
	if err != nil {
		log.Error().Err(err).Str("userID", userID.String()).Msg("Dashboard: attempt fetch failed")
		return nil, fmt.Errorf("error fetching attempts: %w", err)
	}
	return buildDashboard(quizCount, attempts), nil
}

func (s *statsService) History(userID uuid.UUID, search, difficulty, sortBy string) ([]dto.AttemptSummaryResponse, error) {
	attempts, err := s.attemptRepo.FindRecentByUser(userID, attemptFetchLimit)
	if err != nil {
		log.Error().Err(err).Str("userID", userID.String()).Msg("History: attempt fetch failed")
		return nil, fmt.Errorf("error fetching attempts: %w", err)
	}
	filtered := filterHistory(attempts, search, difficulty)
	sortHistory(filtered, sortBy)

	summaries := make([]dto.AttemptSummaryResponse, 0, len(filtered))
	for _, a := range filtered {
		summaries = append(summaries, attemptSummary(a))
	}
	return summaries, nil
}

func (s *statsService) Analytics(userID uuid.UUID, window string) (*dto.AnalyticsResponse, error) {
	attempts, err := s.attemptRepo.FindRecentByUser(userID, attemptFetchLimit)
	if err != nil {
		log.Error().Err(err).Str("userID", userID.String()).Msg("Analytics: attempt fetch failed")
		return nil, fmt.Errorf("error fetching attempts: %w", err)
	}
	windowed := filterWindow(attempts, s.now(), window)
	return buildAnalytics(windowed, window), nil
}

func attemptSummary(a model.QuizAttempt) dto.AttemptSummaryResponse {
	return dto.AttemptSummaryResponse{
		ID:             a.ID,
		QuizID:         a.QuizID,
		QuizTitle:      a.Quiz.Title,
		Topic:          a.Quiz.Topic,
		Difficulty:     string(a.Quiz.Difficulty),
		Score:          a.Score,
		CorrectCount:   a.CorrectCount,
		TotalQuestions: a.TotalQuestions,
		ElapsedSeconds: a.ElapsedSeconds,
		CompletedAt:    a.CompletedAt,
	}
}

// buildDashboard summarizes the user's standing. attempts arrive newest
// completion first.
func buildDashboard(quizCount int64, attempts []model.QuizAttempt) *dto.DashboardResponse {
	resp := &dto.DashboardResponse{
		TotalQuizzes:   quizCount,
		TotalAttempts:  len(attempts),
		RecentAttempts: []dto.AttemptSummaryResponse{},
	}
	if len(attempts) == 0 {
		return resp
	}

	sum := 0
	for _, a := range attempts {
		sum += a.Score
		if a.Score > resp.BestScore {
			resp.BestScore = a.Score
		}
		resp.TotalElapsedSeconds += a.ElapsedSeconds
	}
	resp.AverageScore = int(math.Round(float64(sum) / float64(len(attempts))))

	recent := attempts
	if len(recent) > 5 {
		recent = recent[:5]
	}
	for _, a := range recent {
		resp.RecentAttempts = append(resp.RecentAttempts, attemptSummary(a))
	}
	return resp
}

// filterHistory applies the conjunction of a case-insensitive substring
// match on quiz title or topic and an exact difficulty match. An empty or
// "all" difficulty matches everything.
func filterHistory(attempts []model.QuizAttempt, search, difficulty string) []model.QuizAttempt {
	needle := strings.ToLower(strings.TrimSpace(search))
	out := make([]model.QuizAttempt, 0, len(attempts))
	for _, a := range attempts {
		if difficulty != "" && difficulty != "all" && string(a.Quiz.Difficulty) != difficulty {
			continue
		}
		if needle != "" {
			title := strings.ToLower(a.Quiz.Title)
			topic := strings.ToLower(a.Quiz.Topic)
			if !strings.Contains(title, needle) && !strings.Contains(topic, needle) {
				continue
			}
		}
		out = append(out, a)
	}
	return out
}

// sortHistory orders by score descending when requested, otherwise by
// completion time descending. Both sorts are stable so ties keep the
// fetched order.
func sortHistory(attempts []model.QuizAttempt, sortBy string) {
	switch sortBy {
	case "score":
		sort.SliceStable(attempts, func(i, j int) bool {
			return attempts[i].Score > attempts[j].Score
		})
	default:
		sort.SliceStable(attempts, func(i, j int) bool {
			return attempts[i].CompletedAt.After(attempts[j].CompletedAt)
		})
	}
}

// filterWindow keeps attempts completed within the trailing window: "7d",
// "30d", "90d" or anything else for unbounded.
func filterWindow(attempts []model.QuizAttempt, now time.Time, window string) []model.QuizAttempt {
	var days int
	switch window {
	case "7d":
		days = 7
	case "30d":
		days = 30
	case "90d":
		days = 90
	default:
		return attempts
	}
	cutoff := now.AddDate(0, 0, -days)
	out := make([]model.QuizAttempt, 0, len(attempts))
	for _, a := range attempts {
		if !a.CompletedAt.Before(cutoff) {
			out = append(out, a)
		}
	}
	return out
}

func buildAnalytics(attempts []model.QuizAttempt, window string) *dto.AnalyticsResponse {
	resp := &dto.AnalyticsResponse{
		Window:       window,
		AttemptCount: len(attempts),
		ScoreTrend:   []dto.ScorePoint{},
		ByDifficulty: []dto.DifficultyBucket{},
		TopTopics:    []dto.TopicBucket{},
	}

	ascending := make([]model.QuizAttempt, len(attempts))
	copy(ascending, attempts)
	sort.SliceStable(ascending, func(i, j int) bool {
		return ascending[i].CompletedAt.Before(ascending[j].CompletedAt)
	})

	for i, a := range ascending {
		resp.ScoreTrend = append(resp.ScoreTrend, dto.ScorePoint{
			Sequence:    i + 1,
			Score:       a.Score,
			CompletedAt: a.CompletedAt,
		})
	}

	resp.ByDifficulty = difficultyBuckets(ascending)
	resp.TopTopics = topicBuckets(ascending)
	resp.Improvement = improvement(ascending)
	return resp
}

func difficultyBuckets(attempts []model.QuizAttempt) []dto.DifficultyBucket {
	type acc struct {
		count, sum int
	}
	byDiff := make(map[model.Difficulty]*acc)
	for _, a := range attempts {
		b := byDiff[a.Quiz.Difficulty]
		if b == nil {
			b = &acc{}
			byDiff[a.Quiz.Difficulty] = b
		}
		b.count++
		b.sum += a.Score
	}

	buckets := []dto.DifficultyBucket{}
	for _, d := range []model.Difficulty{model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard} {
		b, ok := byDiff[d]
		if !ok {
			continue
		}
		buckets = append(buckets, dto.DifficultyBucket{
			Difficulty:   string(d),
			Count:        b.count,
			AverageScore: int(math.Round(float64(b.sum) / float64(b.count))),
		})
	}
	return buckets
}

// topicBuckets keeps the five busiest topics, most attempted first.
func topicBuckets(attempts []model.QuizAttempt) []dto.TopicBucket {
	type acc struct {
		count, sum, best int
	}
	byTopic := make(map[string]*acc)
	for _, a := range attempts {
		topic := a.Quiz.Topic
		if topic == "" {
			continue
		}
		b := byTopic[topic]
		if b == nil {
			b = &acc{}
			byTopic[topic] = b
		}
		b.count++
		b.sum += a.Score
		if a.Score > b.best {
			b.best = a.Score
		}
	}

	buckets := make([]dto.TopicBucket, 0, len(byTopic))
	for topic, b := range byTopic {
		buckets = append(buckets, dto.TopicBucket{
			Topic:        topic,
			Count:        b.count,
			AverageScore: int(math.Round(float64(b.sum) / float64(b.count))),
			BestScore:    b.best,
		})
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Count != buckets[j].Count {
			return buckets[i].Count > buckets[j].Count
		}
		return buckets[i].Topic < buckets[j].Topic
	})
	if len(buckets) > 5 {
		buckets = buckets[:5]
	}
	return buckets
}

// improvement compares the mean score of the first half of the time-ascending
// window against the second half. Fewer than 4 attempts is too little signal
// and reads as 0.
func improvement(ascending []model.QuizAttempt) int {
	n := len(ascending)
	if n < 4 {
		return 0
	}
	half := n / 2
	mean := func(part []model.QuizAttempt) float64 {
		sum := 0
		for _, a := range part {
			sum += a.Score
		}
		return float64(sum) / float64(len(part))
	}
	return int(math.Round(mean(ascending[half:]) - mean(ascending[:half])))
}
