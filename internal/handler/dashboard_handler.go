package handler

import (
	"errors"
	"fmt"

	"github.com/intervu-ai/intervu-server/internal/domain"
	"github.com/intervu-ai/intervu-server/internal/service"
	"github.com/intervu-ai/intervu-server/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type DashboardHandler struct {
	dashboardService domain.DashboardService
	reportService    domain.ReportService
}

func NewDashboardHandler(dashboardService domain.DashboardService, reportService domain.ReportService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		reportService:    reportService,
	}
}

func (h *DashboardHandler) ListCandidates(c *fiber.Ctx) error {
	search := c.Query("search", "")
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)

	result, err := h.dashboardService.ListCandidates(c.UserContext(), search, page, limit)
	if err != nil {
		return response.InternalError(c, err.Error())
	}

	return response.Success(c, fiber.StatusOK, "candidates retrieved", result)
}

func (h *DashboardHandler) GetCandidateDetail(c *fiber.Ctx) error {
	candidateID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "invalid candidate id")
	}

	detail, err := h.dashboardService.GetCandidateDetail(c.UserContext(), candidateID)
	if err != nil {
		if errors.Is(err, service.ErrCandidateNotFound) {
			return response.NotFound(c, "candidate not found")
		}
		return response.InternalError(c, err.Error())
	}

	return response.Success(c, fiber.StatusOK, "candidate detail", detail)
}

func (h *DashboardHandler) GetRecording(c *fiber.Ctx) error {
	blobID, err := uuid.Parse(c.Params("blobId"))
	if err != nil {
		return response.BadRequest(c, "invalid recording id")
	}

	recording, err := h.dashboardService.GetRecording(c.UserContext(), blobID)
	if err != nil {
		if errors.Is(err, service.ErrRecordingNotFound) {
			return response.NotFound(c, "recording not found")
		}
		return response.InternalError(c, err.Error())
	}

	return response.Success(c, fiber.StatusOK, "recording", recording)
}

func (h *DashboardHandler) GetSessionDetail(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "invalid session id")
	}

	detail, err := h.dashboardService.GetSessionDetail(c.UserContext(), sessionID)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			return response.NotFound(c, "interview session not found")
		}
		return response.InternalError(c, err.Error())
	}

	return response.Success(c, fiber.StatusOK, "session detail", detail)
}

func (h *DashboardHandler) GetStats(c *fiber.Ctx) error {
	stats, err := h.dashboardService.GetStats(c.UserContext())
	if err != nil {
		return response.InternalError(c, err.Error())
	}

	return response.Success(c, fiber.StatusOK, "dashboard stats", stats)
}

func (h *DashboardHandler) DeleteCandidate(c *fiber.Ctx) error {
	candidateID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "invalid candidate id")
	}

	if err := h.dashboardService.DeleteCandidate(c.UserContext(), candidateID); err != nil {
		if errors.Is(err, service.ErrCandidateNotFound) {
			return response.NotFound(c, "candidate not found")
		}
		return response.InternalError(c, err.Error())
	}

	return response.Success(c, fiber.StatusOK, "candidate deleted", nil)
}

func (h *DashboardHandler) DownloadReport(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "invalid session id")
	}

	pdf, err := h.reportService.SessionReport(c.UserContext(), sessionID)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			return response.NotFound(c, "interview session not found")
		}
		return response.InternalError(c, err.Error())
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="interview-report-%s.pdf"`, sessionID))
	return c.Send(pdf)
}
