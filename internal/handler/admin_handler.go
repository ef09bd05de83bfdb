package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/hirolabs/hirehub-api/internal/dto"
	"github.com/hirolabs/hirehub-api/internal/service"
	"github.com/hirolabs/hirehub-api/internal/utils"
	"github.com/hirolabs/hirehub-api/pkg/recruiter"
)

// AdminHandler exposes the HR console endpoints.
type AdminHandler struct {
	service service.AdminService
	logger  zerolog.Logger
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(service service.AdminService, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_handler").Logger(),
	}
}

// Register wires admin routes under the provided router group.
func (h *AdminHandler) Register(router fiber.Router) {
	router.Post("/jobs", h.createJob)
	router.Get("/jobs/:jobId", h.jobDetail)
	router.Put("/jobs/:jobId", h.updateJob)
	router.Delete("/jobs/:jobId", h.deleteJob)
	router.Get("/jobs/:jobId/applicants", h.applicants)
	router.Get("/applicants/:id", h.applicant)
	router.Get("/applicants/:id/resume", h.resume)
	router.Get("/accounts", h.listHRs)
	router.Put("/accounts/:id", h.updateHR)
	router.Delete("/accounts/:id", h.deleteHR)
}

func (h *AdminHandler) createJob(c *fiber.Ctx) error {
	var payload dto.JobRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.service.CreateJob(c.UserContext(), payload); err != nil {
		return h.handleError(c, err, "failed to create job")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "job created", nil)
}

func (h *AdminHandler) jobDetail(c *fiber.Ctx) error {
	job, err := h.service.JobDetail(c.UserContext(), c.Params("jobId"), userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err, "failed to fetch job")
	}

	return utils.SendSuccess(c, "job retrieved", job)
}

func (h *AdminHandler) updateJob(c *fiber.Ctx) error {
	var payload dto.JobRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.service.UpdateJob(c.UserContext(), c.Params("jobId"), payload); err != nil {
		return h.handleError(c, err, "failed to update job")
	}

	return utils.SendSuccess(c, "job updated", nil)
}

func (h *AdminHandler) deleteJob(c *fiber.Ctx) error {
	if err := h.service.DeleteJob(c.UserContext(), c.Params("jobId")); err != nil {
		return h.handleError(c, err, "failed to delete job")
	}

	return utils.SendSuccess(c, "job deleted", nil)
}

func (h *AdminHandler) applicants(c *fiber.Ctx) error {
	candidates, err := h.service.Applicants(c.UserContext(), c.Params("jobId"))
	if err != nil {
		return h.handleError(c, err, "failed to list applicants")
	}

	return utils.SendSuccess(c, "applicants retrieved", candidates)
}

func (h *AdminHandler) applicant(c *fiber.Ctx) error {
	candidate, err := h.service.Applicant(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.handleError(c, err, "failed to fetch applicant")
	}

	return utils.SendSuccess(c, "applicant retrieved", candidate)
}

func (h *AdminHandler) resume(c *fiber.Ctx) error {
	payload, contentType, err := h.service.Resume(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.handleError(c, err, "failed to download resume")
	}

	c.Set(fiber.HeaderContentType, contentType)
	return c.Send(payload)
}

func (h *AdminHandler) listHRs(c *fiber.Ctx) error {
	hrs, err := h.service.ListHRs(c.UserContext())
	if err != nil {
		return h.handleError(c, err, "failed to list hr accounts")
	}

	return utils.SendSuccess(c, "hr accounts retrieved", hrs)
}

func (h *AdminHandler) updateHR(c *fiber.Ctx) error {
	var payload recruiter.HR
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.service.UpdateHR(c.UserContext(), c.Params("id"), payload); err != nil {
		return h.handleError(c, err, "failed to update hr account")
	}

	return utils.SendSuccess(c, "hr account updated", nil)
}

func (h *AdminHandler) deleteHR(c *fiber.Ctx) error {
	if err := h.service.DeleteHR(c.UserContext(), c.Params("id")); err != nil {
		return h.handleError(c, err, "failed to delete hr account")
	}

	return utils.SendSuccess(c, "hr account deleted", nil)
}

func (h *AdminHandler) handleError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, recruiter.ErrNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "record not found")
	case errors.Is(err, recruiter.ErrUnauthorized):
		return utils.SendError(c, fiber.StatusForbidden, "forbidden")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg(fallback)
		return utils.SendError(c, fiber.StatusBadGateway, fallback)
	}
}
