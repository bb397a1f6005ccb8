package handler

import (
	"errors"

	"github.com/intervu-ai/intervu-server/internal/domain"
	"github.com/intervu-ai/intervu-server/internal/service"
	"github.com/intervu-ai/intervu-server/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CandidateHandler struct {
	candidateService domain.CandidateService
}

func NewCandidateHandler(candidateService domain.CandidateService) *CandidateHandler {
	return &CandidateHandler{candidateService: candidateService}
}

// UploadResume ingests a resume file and creates the candidate. The response
// lists the contact fields extraction could not fill.
func (h *CandidateHandler) UploadResume(c *fiber.Ctx) error {
	file, err := c.FormFile("resume")
	if err != nil {
		return response.BadRequest(c, "resume file is required")
	}

	result, err := h.candidateService.IngestResume(c.UserContext(), file)
	if err != nil {
		if errors.Is(err, service.ErrResumeUnreadable) {
			return response.Error(c, fiber.StatusUnprocessableEntity, err.Error())
		}
		return response.BadRequest(c, err.Error())
	}

	return response.Success(c, fiber.StatusCreated, "resume processed", result)
}

func (h *CandidateHandler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "invalid candidate id")
	}

	var req domain.UpdateCandidateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	if err := validateUpdateCandidateRequest(&req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	result, err := h.candidateService.UpdateFields(c.UserContext(), id, &req)
	if err != nil {
		if errors.Is(err, service.ErrCandidateNotFound) {
			return response.NotFound(c, "candidate not found")
		}
		return response.InternalError(c, err.Error())
	}

	return response.Success(c, fiber.StatusOK, "candidate updated", result)
}

func (h *CandidateHandler) GetByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "invalid candidate id")
	}

	candidate, err := h.candidateService.GetByID(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, service.ErrCandidateNotFound) {
			return response.NotFound(c, "candidate not found")
		}
		return response.InternalError(c, err.Error())
	}

	return response.Success(c, fiber.StatusOK, "candidate retrieved", &domain.CandidateResponse{
		Candidate:     candidate,
		MissingFields: candidate.MissingFields(),
	})
}

func validateUpdateCandidateRequest(req *domain.UpdateCandidateRequest) error {
	validate := validator.New()
	return validate.Struct(req)
}
