package handler

import (
	"errors"
	"time"

	"persona-match/internal/delivery/http/dto"
	"persona-match/internal/delivery/http/middleware"
	"persona-match/internal/domain/match"
	"persona-match/internal/pkg/response"
	"persona-match/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type MatchHandler struct {
	list   usecase.MatchListUsecase
	status usecase.MatchStatusUsecase
}

func NewMatchHandler(list usecase.MatchListUsecase, status usecase.MatchStatusUsecase) *MatchHandler {
	return &MatchHandler{list: list, status: status}
}

func (h *MatchHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/users/me/matches", h.ListMine)
	r.Patch("/matches/:match_id/status", h.UpdateStatus)
}

func (h *MatchHandler) ListMine(c fiber.Ctx) error {
	callerID, ok := c.Locals(middleware.CtxUserIDKey).(uuid.UUID)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	items, err := h.list.ListForUser(c.Context(), callerID)
	if err != nil {
		return mapMatchUsecaseError(err)
	}

	out := dto.MatchListResponse{Matches: make([]dto.MatchResponse, 0, len(items)), Total: len(items)}
	for _, it := range items {
		out.Matches = append(out.Matches, toMatchResponse(it))
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

type updateStatusRequest struct {
	Status        string     `json:"status"`
	ScheduledTime *time.Time `json:"scheduled_time,omitempty"`
}

func (h *MatchHandler) UpdateStatus(c fiber.Ctx) error {
	callerID, ok := c.Locals(middleware.CtxUserIDKey).(uuid.UUID)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	matchID, err := uuid.Parse(c.Params("match_id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	var req updateStatusRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	rec, err := h.status.UpdateStatus(c.Context(), usecase.UpdateStatusInput{
		MatchID:       matchID,
		CallerID:      callerID,
		Status:        match.Status(req.Status),
		ScheduledTime: req.ScheduledTime,
	})
	if err != nil {
		return mapMatchUsecaseError(err)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, toMatchResponse(usecase.MatchListItem{
		Record:  rec,
		Summary: usecase.MatchedUserSummary{UserID: rec.MatchedUserID},
	}))
}

func toMatchResponse(it usecase.MatchListItem) dto.MatchResponse {
	return dto.MatchResponse{
		ID: it.Record.ID,
		MatchedUser: dto.MatchedUserResponse{
			UserID:     it.Summary.UserID,
			Headline:   it.Summary.Headline,
			Profession: it.Summary.Profession,
			Company:    it.Summary.Company,
			City:       it.Summary.City,
			State:      it.Summary.State,
		},
		Status: string(it.Record.Status),
		Score: dto.ScoreResponse{
			SkillsAlignment:         it.Record.Score.SkillsAlignment,
			IndustryAlignment:       it.Record.Score.IndustryAlignment,
			ProfessionalFit:         it.Record.Score.ProfessionalFit,
			PersonalFit:             it.Record.Score.PersonalFit,
			ExperienceCompatibility: it.Record.Score.ExperienceCompatibility,
			Overall:                 it.Record.Score.Overall,
			Details:                 it.Record.Score.Details,
		},
		ScheduledTime: it.Record.ScheduledTime,
		CreatedAt:     it.Record.CreatedAt,
		UpdatedAt:     it.Record.UpdatedAt,
	}
}

func mapMatchUsecaseError(err error) error {
	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	case errors.Is(err, usecase.ErrInvalidTransition):
		return middleware.NewAppError(fiber.StatusUnprocessableEntity, "Invalid status transition", nil, err)
	case errors.Is(err, usecase.ErrMatchNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Match not found", nil, err)
	case errors.Is(err, usecase.ErrForbidden):
		return middleware.NewAppError(fiber.StatusForbidden, "Forbidden", nil, err)
	case errors.Is(err, usecase.ErrUnauthorized):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
