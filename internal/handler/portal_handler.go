package handler

import (
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/hirolabs/hirehub-api/internal/service"
	"github.com/hirolabs/hirehub-api/internal/utils"
	"github.com/hirolabs/hirehub-api/pkg/recruiter"
)

const maxResumeBytes = 10 << 20

// PortalHandler exposes the candidate-facing job board.
type PortalHandler struct {
	service service.PortalService
	logger  zerolog.Logger
}

// NewPortalHandler constructs the handler.
func NewPortalHandler(service service.PortalService, logger zerolog.Logger) *PortalHandler {
	return &PortalHandler{
		service: service,
		logger:  logger.With().Str("component", "portal_handler").Logger(),
	}
}

// Register wires portal routes under the provided router group.
func (h *PortalHandler) Register(router fiber.Router) {
	router.Get("/jobs", h.listJobs)
	router.Get("/jobs/:jobId", h.jobDetail)
	router.Post("/jobs/:jobId/apply", h.apply)
}

func (h *PortalHandler) listJobs(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user id missing")
	}

	jobs, err := h.service.ListJobs(c.UserContext(), userID)
	if err != nil {
		return h.handleError(c, err, "failed to list jobs")
	}

	return utils.SendSuccess(c, "jobs retrieved", jobs)
}

func (h *PortalHandler) jobDetail(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user id missing")
	}

	job, err := h.service.JobDetail(c.UserContext(), c.Params("jobId"), userID)
	if err != nil {
		return h.handleError(c, err, "failed to fetch job")
	}

	return utils.SendSuccess(c, "job retrieved", job)
}

func (h *PortalHandler) apply(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user id missing")
	}

	fileHeader, err := c.FormFile("resume")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "resume file required")
	}
	if fileHeader.Size > maxResumeBytes {
		return utils.SendError(c, fiber.StatusRequestEntityTooLarge, "resume exceeds size limit")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "unable to read resume")
	}
	defer file.Close()

	payload, err := io.ReadAll(io.LimitReader(file, maxResumeBytes))
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "unable to read resume")
	}

	if err := h.service.Apply(c.UserContext(), c.Params("jobId"), userID, fileHeader.Filename, payload); err != nil {
		return h.handleError(c, err, "failed to submit application")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "application submitted", nil)
}

func (h *PortalHandler) handleError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, recruiter.ErrNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "job not found")
	case errors.Is(err, service.ErrResumeRejected):
		return utils.SendError(c, fiber.StatusUnsupportedMediaType, "resume format not accepted")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg(fallback)
		return utils.SendError(c, fiber.StatusBadGateway, fallback)
	}
}
