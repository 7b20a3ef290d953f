package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lshigami/Quizzine/internal/dto"
	"github.com/lshigami/Quizzine/internal/middleware"
	"github.com/lshigami/Quizzine/internal/model"
	"github.com/lshigami/Quizzine/internal/service"
	"github.com/rs/zerolog/log"
)

type QuizController struct {
	quizService       service.QuizService
	generationService service.GenerationService
	documentService   service.DocumentService
}

func NewQuizController(qs service.QuizService, gs service.GenerationService, ds service.DocumentService) *QuizController {
	return &QuizController{
		quizService:       qs,
		generationService: gs,
		documentService:   ds,
	}
}

// GenerateQuiz godoc
// @Summary Generate a quiz from a topic
// @Description Asks the AI for a multiple-choice quiz on the given topic and stores it for the current user.
// @Tags Quizzes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.GenerateQuizRequest true "Topic, difficulty, question count and optional time limit"
// @Success 201 {object} dto.QuizDetailResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 401 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse "Generation failed"
// @Failure 500 {object} dto.ErrorResponse
// @Router /quizzes/generate [post]
func (c *QuizController) GenerateQuiz(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Not authenticated"})
		return
	}
	var req dto.GenerateQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	difficulty := model.Difficulty(req.Difficulty)

	generated, err := c.generationService.GenerateQuiz(ctx.Request.Context(), req.Topic, difficulty, req.QuestionCount)
	if err != nil {
		log.Error().Err(err).Str("topic", req.Topic).Msg("GenerateQuiz: generation failed")
		ctx.JSON(http.StatusBadGateway, dto.ErrorResponse{Message: "Quiz generation failed", Details: []string{err.Error()}})
		return
	}

	quiz, err := c.quizService.CreateFromGenerated(userID, generated, req.Topic, difficulty, req.TimeLimitMinutes)
	if err != nil {
		log.Error().Err(err).Msg("GenerateQuiz: failed to save quiz")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to save generated quiz"})
		return
	}
	ctx.JSON(http.StatusCreated, quiz)
}

// GenerateQuizFromDocument godoc
// @Summary Generate a quiz from an uploaded document
// @Description Extracts text from an uploaded PDF, DOCX, TXT or Markdown file and generates a quiz over it. The file itself is discarded after extraction.
// @Tags Quizzes
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Source document (.pdf, .docx, .txt, .md; max 10 MB)"
// @Param difficulty formData string true "easy, medium or hard"
// @Param question_count formData int true "Number of questions (1-20)"
// @Param time_limit_minutes formData int false "Optional time limit in minutes"
// @Success 201 {object} dto.QuizDetailResponse
// @Failure 400 {object} dto.ErrorResponse "Missing file, unsupported type or bad parameters"
// @Failure 401 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse "Generation failed"
// @Failure 500 {object} dto.ErrorResponse
// @Router /quizzes/generate-from-document [post]
func (c *QuizController) GenerateQuizFromDocument(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Not authenticated"})
		return
	}

	header, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "A source document file is required"})
		return
	}
	difficulty := model.Difficulty(ctx.PostForm("difficulty"))
	if !difficulty.Valid() {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "difficulty must be easy, medium or hard"})
		return
	}
	questionCount, err := strconv.Atoi(ctx.PostForm("question_count"))
	if err != nil || questionCount < 1 || questionCount > 20 {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "question_count must be between 1 and 20"})
		return
	}
	var timeLimit *int
	if raw := ctx.PostForm("time_limit_minutes"); raw != "" {
		minutes, err := strconv.Atoi(raw)
		if err != nil || minutes < 1 {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "time_limit_minutes must be a positive integer"})
			return
		}
		timeLimit = &minutes
	}

	text, err := c.documentService.ExtractText(header)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Could not extract text from the document", Details: []string{err.Error()}})
		return
	}

	generated, err := c.generationService.GenerateQuizFromText(ctx.Request.Context(), text, difficulty, questionCount)
	if err != nil {
		log.Error().Err(err).Str("filename", header.Filename).Msg("GenerateQuizFromDocument: generation failed")
		ctx.JSON(http.StatusBadGateway, dto.ErrorResponse{Message: "Quiz generation failed", Details: []string{err.Error()}})
		return
	}

	quiz, err := c.quizService.CreateFromGenerated(userID, generated, header.Filename, difficulty, timeLimit)
	if err != nil {
		log.Error().Err(err).Msg("GenerateQuizFromDocument: failed to save quiz")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to save generated quiz"})
		return
	}
	ctx.JSON(http.StatusCreated, quiz)
}

// ListQuizzes godoc
// @Summary List the current user's quizzes
// @Tags Quizzes
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.QuizSummaryResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /quizzes [get]
func (c *QuizController) ListQuizzes(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Not authenticated"})
		return
	}
	quizzes, err := c.quizService.ListUserQuizzes(userID)
	if err != nil {
		log.Error().Err(err).Str("userID", userID.String()).Msg("ListQuizzes: service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to list quizzes"})
		return
	}
	ctx.JSON(http.StatusOK, quizzes)
}

// GetQuiz godoc
// @Summary Get a quiz with its questions
// @Description Returns the quiz and its ordered questions. Correct answers are not included; grading happens at submission.
// @Tags Quizzes
// @Produce json
// @Security BearerAuth
// @Param quiz_id path string true "Quiz ID"
// @Success 200 {object} dto.QuizDetailResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid quiz ID"
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "Quiz not found"
// @Failure 500 {object} dto.ErrorResponse
// @Router /quizzes/{quiz_id} [get]
func (c *QuizController) GetQuiz(ctx *gin.Context) {
	quizID, err := uuid.Parse(ctx.Param("quiz_id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid quiz ID"})
		return
	}
	quiz, err := c.quizService.GetQuizDetails(quizID)
	if err != nil {
		if errors.Is(err, service.ErrQuizNotFound) {
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "Quiz not found"})
			return
		}
		log.Error().Err(err).Str("quizID", quizID.String()).Msg("GetQuiz: service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to fetch quiz"})
		return
	}
	ctx.JSON(http.StatusOK, quiz)
}
