package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lshigami/Quizzine/internal/dto"
	"github.com/lshigami/Quizzine/internal/middleware"
	"github.com/lshigami/Quizzine/internal/service"
	"github.com/rs/zerolog/log"
)

type SessionController struct {
	sessionService service.SessionService
}

func NewSessionController(ss service.SessionService) *SessionController {
	return &SessionController{sessionService: ss}
}

// StartSession godoc
// @Summary Start a quiz-taking session
// @Description Creates a live session for the quiz. For timed quizzes the countdown starts immediately.
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param quiz_id path string true "Quiz ID"
// @Success 201 {object} dto.SessionStateResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid quiz ID"
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "Quiz not found"
// @Failure 500 {object} dto.ErrorResponse
// @Router /quizzes/{quiz_id}/sessions [post]
func (c *SessionController) StartSession(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Not authenticated"})
		return
	}
	quizID, err := uuid.Parse(ctx.Param("quiz_id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid quiz ID"})
		return
	}

	state, err := c.sessionService.Start(quizID, userID)
	if err != nil {
		if errors.Is(err, service.ErrQuizNotFound) {
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "Quiz not found"})
			return
		}
		log.Error().Err(err).Str("quizID", quizID.String()).Msg("StartSession: service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to start session"})
		return
	}
	ctx.JSON(http.StatusCreated, state)
}

// GetSession godoc
// @Summary Get the current state of a session
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param session_id path string true "Session ID"
// @Success 200 {object} dto.SessionStateResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid session ID"
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Router /sessions/{session_id} [get]
func (c *SessionController) GetSession(ctx *gin.Context) {
	sess, ok := c.resolve(ctx, func(sessionID, userID uuid.UUID) (*dto.SessionStateResponse, error) {
		return c.sessionService.Get(sessionID, userID)
	})
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, sess)
}

// SelectAnswer godoc
// @Summary Record an answer for a question
// @Description Selecting an option for an already-answered question overwrites the earlier choice.
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param session_id path string true "Session ID"
// @Param answer body dto.SelectAnswerRequest true "Question and chosen option"
// @Success 200 {object} dto.SessionStateResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid body, unknown question or option out of range"
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Failure 409 {object} dto.ErrorResponse "Session already completed"
// @Router /sessions/{session_id}/answers [post]
func (c *SessionController) SelectAnswer(ctx *gin.Context) {
	var req dto.SelectAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	sess, ok := c.resolve(ctx, func(sessionID, userID uuid.UUID) (*dto.SessionStateResponse, error) {
		return c.sessionService.SelectAnswer(sessionID, userID, req.QuestionID, req.OptionIndex)
	})
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, sess)
}

// Navigate godoc
// @Summary Move to a question by index
// @Description Out-of-range targets are clamped to the nearest valid question.
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param session_id path string true "Session ID"
// @Param target body dto.NavigateRequest true "Zero-based question index"
// @Success 200 {object} dto.SessionStateResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Failure 409 {object} dto.ErrorResponse "Session already completed"
// @Router /sessions/{session_id}/navigate [post]
func (c *SessionController) Navigate(ctx *gin.Context) {
	var req dto.NavigateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	sess, ok := c.resolve(ctx, func(sessionID, userID uuid.UUID) (*dto.SessionStateResponse, error) {
		return c.sessionService.Navigate(sessionID, userID, req.Index)
	})
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, sess)
}

// Submit godoc
// @Summary Submit the session for grading
// @Description Grades every question, scoring unanswered ones as incorrect, and records an immutable attempt.
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param session_id path string true "Session ID"
// @Success 200 {object} dto.SessionResult
// @Failure 400 {object} dto.ErrorResponse "Invalid session ID"
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Failure 409 {object} dto.ErrorResponse "Already completed or submission in flight"
// @Failure 500 {object} dto.ErrorResponse "Attempt could not be saved; the session stays open for a retry"
// @Router /sessions/{session_id}/submit [post]
func (c *SessionController) Submit(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Not authenticated"})
		return
	}
	sessionID, err := uuid.Parse(ctx.Param("session_id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid session ID"})
		return
	}

	result, err := c.sessionService.Submit(sessionID, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "Session not found"})
		case errors.Is(err, service.ErrSessionCompleted):
			ctx.JSON(http.StatusConflict, dto.ErrorResponse{Message: "Session is already completed"})
		case errors.Is(err, service.ErrSubmitInFlight):
			ctx.JSON(http.StatusConflict, dto.ErrorResponse{Message: "A submission is already in progress"})
		default:
			log.Error().Err(err).Str("sessionID", sessionID.String()).Msg("Submit: service error")
			ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to record attempt; please retry"})
		}
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// CloseSession godoc
// @Summary Abandon a session without submitting
// @Description Discards the live session. No attempt record is written.
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param session_id path string true "Session ID"
// @Success 204 "Session discarded"
// @Failure 400 {object} dto.ErrorResponse "Invalid session ID"
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Router /sessions/{session_id} [delete]
func (c *SessionController) CloseSession(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Not authenticated"})
		return
	}
	sessionID, err := uuid.Parse(ctx.Param("session_id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid session ID"})
		return
	}

	if err := c.sessionService.Close(sessionID, userID); err != nil {
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "Session not found"})
		return
	}
	ctx.Status(http.StatusNoContent)
}

// resolve factors out the auth check, session ID parsing and the shared error
// mapping for the state-returning session operations.
func (c *SessionController) resolve(ctx *gin.Context, op func(sessionID, userID uuid.UUID) (*dto.SessionStateResponse, error)) (*dto.SessionStateResponse, bool) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Not authenticated"})
		return nil, false
	}
	sessionID, err := uuid.Parse(ctx.Param("session_id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid session ID"})
		return nil, false
	}

	state, err := op(sessionID, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "Session not found"})
		case errors.Is(err, service.ErrSessionCompleted):
			ctx.JSON(http.StatusConflict, dto.ErrorResponse{Message: "Session is already completed"})
		default:
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: err.Error()})
		}
		return nil, false
	}
	return state, true
}
