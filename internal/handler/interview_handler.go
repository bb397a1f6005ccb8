package handler

import (
	"errors"

	"github.com/intervu-ai/intervu-server/internal/domain"
	"github.com/intervu-ai/intervu-server/internal/interview"
	"github.com/intervu-ai/intervu-server/internal/service"
	"github.com/intervu-ai/intervu-server/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type InterviewHandler struct {
	interviewService domain.InterviewService
}

func NewInterviewHandler(interviewService domain.InterviewService) *InterviewHandler {
	return &InterviewHandler{interviewService: interviewService}
}

func (h *InterviewHandler) Start(c *fiber.Ctx) error {
	var req domain.StartInterviewRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if req.CandidateID == uuid.Nil {
		return response.BadRequest(c, "candidate_id is required")
	}

	state, err := h.interviewService.Start(c.UserContext(), req.CandidateID)
	if err != nil {
		if errors.Is(err, service.ErrCandidateNotFound) {
			return response.NotFound(c, "candidate not found")
		}
		return response.InternalError(c, err.Error())
	}

	return response.Success(c, fiber.StatusCreated, "interview started", state)
}

func (h *InterviewHandler) GetState(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "invalid session id")
	}

	state, err := h.interviewService.GetState(c.UserContext(), sessionID)
	if err != nil {
		return h.mapError(c, err)
	}

	return response.Success(c, fiber.StatusOK, "session state", state)
}

func (h *InterviewHandler) StartAnswer(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "invalid session id")
	}

	state, err := h.interviewService.StartAnswer(c.UserContext(), sessionID)
	if err != nil {
		return h.mapError(c, err)
	}

	return response.Success(c, fiber.StatusOK, "answer started", state)
}

func (h *InterviewHandler) SkipPreparation(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "invalid session id")
	}

	state, err := h.interviewService.SkipPreparation(c.UserContext(), sessionID)
	if err != nil {
		return h.mapError(c, err)
	}

	return response.Success(c, fiber.StatusOK, "preparation skipped", state)
}

func (h *InterviewHandler) SubmitAnswer(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "invalid session id")
	}

	var req domain.SubmitAnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	if err := validateSubmitAnswerRequest(&req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	state, err := h.interviewService.SubmitAnswer(c.UserContext(), sessionID, &req)
	if err != nil {
		return h.mapError(c, err)
	}

	return response.Success(c, fiber.StatusOK, "answer submitted", state)
}

func (h *InterviewHandler) Exit(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "invalid session id")
	}

	state, err := h.interviewService.Exit(c.UserContext(), sessionID)
	if err != nil {
		return h.mapError(c, err)
	}

	return response.Success(c, fiber.StatusOK, "interview exited", state)
}

func (h *InterviewHandler) UploadRecording(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "invalid session id")
	}

	file, err := c.FormFile("recording")
	if err != nil {
		return response.BadRequest(c, "recording file is required")
	}

	recording, err := h.interviewService.UploadRecording(c.UserContext(), sessionID, file)
	if err != nil {
		if errors.Is(err, service.ErrStorageDisabled) {
			return response.Error(c, fiber.StatusServiceUnavailable, "recording storage is not configured")
		}
		if errors.Is(err, service.ErrRecordingTooLate) {
			return response.Conflict(c, err.Error())
		}
		return h.mapError(c, err)
	}

	return response.Success(c, fiber.StatusCreated, "recording uploaded", recording)
}

// mapError translates service and state machine errors into HTTP statuses:
// unknown session is 404, an out-of-phase command is 409, everything else
// is a 500.
func (h *InterviewHandler) mapError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		return response.NotFound(c, "interview session not found")
	case errors.Is(err, interview.ErrNotPreparing),
		errors.Is(err, interview.ErrNotReady),
		errors.Is(err, interview.ErrNotAnswering),
		errors.Is(err, interview.ErrSessionFinished):
		return response.Conflict(c, err.Error())
	default:
		return response.InternalError(c, err.Error())
	}
}

func validateSubmitAnswerRequest(req *domain.SubmitAnswerRequest) error {
	validate := validator.New()
	return validate.Struct(req)
}
