package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/lshigami/Quizzine/config"
	"github.com/lshigami/Quizzine/internal/model"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

// GeneratedQuestion is the structured shape the model is asked to emit for
// each question.
type GeneratedQuestion struct {
	Prompt       string   `json:"prompt"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
	Explanation  string   `json:"explanation"`
}

type GeneratedQuiz struct {
	Title     string              `json:"title"`
	Questions []GeneratedQuestion `json:"questions"`
}

// GenerationService turns a topic or an extracted document text into
// structured quiz content via Gemini.
type GenerationService interface {
	GenerateQuiz(ctx context.Context, topic string, difficulty model.Difficulty, count int) (*GeneratedQuiz, error)
	GenerateQuizFromText(ctx context.Context, text string, difficulty model.Difficulty, count int) (*GeneratedQuiz, error)
}

type geminiLLMService struct {
	client *genai.GenerativeModel
	cfg    *config.Config
}

func NewGenerationService(cfg *config.Config) (GenerationService, error) {
	if cfg.GeminiApiKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set. GenerationService will be non-functional.")
		return &geminiLLMService{cfg: cfg, client: nil}, nil
	}
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiApiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	m := client.GenerativeModel("gemini-1.5-flash")
	m.ResponseMIMEType = "application/json"
	return &geminiLLMService{client: m, cfg: cfg}, nil
}

const (
	// maxGeneratedQuestions bounds a single generation request.
	maxGeneratedQuestions = 20
	// maxSourceTextChars caps how much extracted document text goes into
	// the prompt.
	maxSourceTextChars = 12000
)

func clampQuestionCount(count int) int {
	if count < 1 {
		return 1
	}
	if count > maxGeneratedQuestions {
		return maxGeneratedQuestions
	}
	return count
}

func buildQuizPrompt(subject string, difficulty model.Difficulty, count int, fromDocument bool) string {
	var b strings.Builder
	b.WriteString("You are a generator of educational multiple-choice quizzes.\n")
	if fromDocument {
		b.WriteString(fmt.Sprintf("Create a quiz of %d questions with difficulty \"%s\" based strictly on the following source text.\n", count, difficulty))
		b.WriteString("Only ask about facts the text actually states.\n\nSource text:\n---\n")
		b.WriteString(subject)
		b.WriteString("\n---\n\n")
	} else {
		b.WriteString(fmt.Sprintf("Create a quiz of %d questions about the topic \"%s\" with difficulty \"%s\".\n\n", count, subject, difficulty))
	}
	b.WriteString("Rules:\n")
	b.WriteString("- Every question has exactly 4 answer options.\n")
	b.WriteString("- Exactly one option is correct; correct_index is its 0-based position.\n")
	b.WriteString("- Vary the position of the correct option.\n")
	b.WriteString("- Distractors must be plausible; the correct option must not stand out by length or phrasing.\n")
	b.WriteString("- Each question carries a short explanation of why the correct option is right.\n\n")
	b.WriteString("Respond with pure, valid JSON only, no text outside the JSON, in this exact shape:\n")
	b.WriteString(`{
  "title": "<short quiz title>",
  "questions": [
    {
      "prompt": "<question text>",
      "options": ["<option 1>", "<option 2>", "<option 3>", "<option 4>"],
      "correct_index": 0,
      "explanation": "<short explanation>"
    }
  ]
}`)
	return b.String()
}

// parseGeneratedQuiz decodes and validates the model output. The model
// sometimes wraps JSON in a markdown fence even when asked not to, so the
// fence is stripped first.
func parseGeneratedQuiz(raw string) (*GeneratedQuiz, error) {
	clean := strings.TrimSpace(raw)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)
	if clean == "" {
		return nil, fmt.Errorf("model returned an empty response")
	}

	var quiz GeneratedQuiz
	if err := json.Unmarshal([]byte(clean), &quiz); err != nil {
		return nil, fmt.Errorf("model response is not valid JSON: %w", err)
	}
	if quiz.Title == "" {
		return nil, fmt.Errorf("model response is missing a quiz title")
	}
	if len(quiz.Questions) == 0 {
		return nil, fmt.Errorf("model response contains no questions")
	}
	for i, q := range quiz.Questions {
		if q.Prompt == "" {
			return nil, fmt.Errorf("question %d has an empty prompt", i+1)
		}
		if len(q.Options) != model.OptionCount {
			return nil, fmt.Errorf("question %d has %d options, want %d", i+1, len(q.Options), model.OptionCount)
		}
		if q.CorrectIndex < 0 || q.CorrectIndex >= model.OptionCount {
			return nil, fmt.Errorf("question %d correct_index %d out of range", i+1, q.CorrectIndex)
		}
	}
	return &quiz, nil
}

func (s *geminiLLMService) generate(ctx context.Context, prompt string) (*GeneratedQuiz, error) {
	if s.client == nil {
		return nil, fmt.Errorf("gemini client not initialized")
	}

	resp, err := s.client.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		log.Error().Err(err).Msg("Gemini API error during quiz generation")
		return nil, fmt.Errorf("gemini API error: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		log.Warn().Msg("Gemini returned no candidates or parts in response.")
		return nil, fmt.Errorf("gemini returned an empty response")
	}
	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return nil, fmt.Errorf("gemini returned a non-text response part")
	}

	quiz, err := parseGeneratedQuiz(string(text))
	if err != nil {
		log.Error().Err(err).Msg("Failed to parse generated quiz content")
		return nil, fmt.Errorf("malformed generation response: %w", err)
	}
	return quiz, nil
}

func (s *geminiLLMService) GenerateQuiz(ctx context.Context, topic string, difficulty model.Difficulty, count int) (*GeneratedQuiz, error) {
	count = clampQuestionCount(count)
	log.Info().Str("topic", topic).Str("difficulty", string(difficulty)).Int("count", count).Msg("Generating quiz from topic")
	return s.generate(ctx, buildQuizPrompt(topic, difficulty, count, false))
}

func (s *geminiLLMService) GenerateQuizFromText(ctx context.Context, text string, difficulty model.Difficulty, count int) (*GeneratedQuiz, error) {
	count = clampQuestionCount(count)
	if len(text) > maxSourceTextChars {
		text = text[:maxSourceTextChars]
	}
	log.Info().Int("sourceChars", len(text)).Str("difficulty", string(difficulty)).Int("count", count).Msg("Generating quiz from document text")
	return s.generate(ctx, buildQuizPrompt(text, difficulty, count, true))
}
