package handler

import (
	"context"
	"errors"

	"persona-match/internal/delivery/http/dto"
	"persona-match/internal/delivery/http/middleware"
	"persona-match/internal/pkg/response"
	"persona-match/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type MatchJobHandler struct {
	uc usecase.MatchJobUsecase
}

func NewMatchJobHandler(uc usecase.MatchJobUsecase) *MatchJobHandler {
	return &MatchJobHandler{uc: uc}
}

func (h *MatchJobHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	grp := r.Group("/matches/jobs")
	grp.Post("/run", h.RunPopulation)
	grp.Post("/run/:user_id", h.RunForUser)
}

func (h *MatchJobHandler) RunPopulation(c fiber.Ctx) error {
	res, err := h.uc.RecomputeForPopulation(c.Context())
	return h.respond(c, res, err)
}

func (h *MatchJobHandler) RunForUser(c fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("user_id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	res, err := h.uc.RecomputeForUser(c.Context(), userID)
	return h.respond(c, res, err)
}

func (h *MatchJobHandler) respond(c fiber.Ctx, res usecase.RunResult, err error) error {
	out := dto.JobRunResponse{
		Created: res.Created,
		Updated: res.Updated,
		Skipped: res.Skipped,
		Failed:  res.Failed,
	}

	switch {
	case err == nil:
		if res.Failed > 0 {
			// Partial success is reported as such, never silently folded
			// into a clean 200.
			return response.Success(c, fiber.StatusOK, "completed with failures", out)
		}
		return response.Success(c, fiber.StatusOK, response.MessageOK, out)
	case errors.Is(err, usecase.ErrUserNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "User not found", nil, err)
	case errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return middleware.NewAppError(fiber.StatusServiceUnavailable, "Run cancelled before completion", out, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
