package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/hirolabs/hirehub-api/internal/dto"
	"github.com/hirolabs/hirehub-api/internal/service"
	"github.com/hirolabs/hirehub-api/internal/utils"
	"github.com/hirolabs/hirehub-api/pkg/judge"
	"github.com/hirolabs/hirehub-api/pkg/recruiter"
)

// SessionHandler exposes the coding-test attempt endpoints.
type SessionHandler struct {
	service service.SessionService
	logger  zerolog.Logger
}

// NewSessionHandler constructs the handler.
func NewSessionHandler(service service.SessionService, logger zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		service: service,
		logger:  logger.With().Str("component", "session_handler").Logger(),
	}
}

// Register wires session routes under the provided router group.
func (h *SessionHandler) Register(router fiber.Router) {
	router.Post("", h.start)
	router.Get("/:id", h.get)
	router.Put("/:id/language", h.switchLanguage)
	router.Put("/:id/code", h.updateCode)
	router.Post("/:id/run", h.run)
	router.Post("/:id/submit", h.submit)
}

func (h *SessionHandler) start(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user id missing")
	}

	var payload dto.StartSessionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Start(c.UserContext(), userID, payload)
	if err != nil {
		return h.handleError(c, err, "failed to start coding test")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "coding test started", result)
}

func (h *SessionHandler) get(c *fiber.Ctx) error {
	result, err := h.service.Get(c.UserContext(), c.Params("id"), userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err, "failed to fetch session")
	}

	return utils.SendSuccess(c, "session retrieved", result)
}

func (h *SessionHandler) switchLanguage(c *fiber.Ctx) error {
	var payload dto.SwitchLanguageRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.SwitchLanguage(c.UserContext(), c.Params("id"), userIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err, "failed to switch language")
	}

	return utils.SendSuccess(c, "language switched", result)
}

func (h *SessionHandler) updateCode(c *fiber.Ctx) error {
	var payload dto.UpdateCodeRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.service.UpdateCode(c.UserContext(), c.Params("id"), userIDFromContext(c), payload); err != nil {
		return h.handleError(c, err, "failed to update code")
	}

	return utils.SendSuccess(c, "code updated", nil)
}

func (h *SessionHandler) run(c *fiber.Ctx) error {
	result, err := h.service.Run(c.UserContext(), c.Params("id"), userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err, "failed to run code")
	}

	return utils.SendSuccess(c, "code executed", result)
}

func (h *SessionHandler) submit(c *fiber.Ctx) error {
	result, err := h.service.Submit(c.UserContext(), c.Params("id"), userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err, "failed to submit test")
	}

	return utils.SendSuccess(c, "test submitted", result)
}

func (h *SessionHandler) handleError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, recruiter.ErrNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "session not found")
	case errors.Is(err, service.ErrSessionForbidden):
		return utils.SendError(c, fiber.StatusForbidden, "forbidden")
	case errors.Is(err, service.ErrAttemptInProgress):
		return utils.SendError(c, fiber.StatusConflict, "an attempt is already in progress")
	case errors.Is(err, service.ErrSessionNotStarted):
		return utils.SendError(c, fiber.StatusConflict, "test not started")
	case errors.Is(err, service.ErrSessionFinished):
		return utils.SendError(c, fiber.StatusConflict, "test already finished")
	case errors.Is(err, service.ErrRunSuperseded):
		return utils.SendError(c, fiber.StatusConflict, "run superseded by a newer submission")
	case errors.Is(err, service.ErrJudgeUnavailable):
		return utils.SendError(c, fiber.StatusServiceUnavailable, "code execution unavailable")
	case errors.Is(err, judge.ErrPollTimeout):
		return utils.SendError(c, fiber.StatusGatewayTimeout, "execution timed out")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg(fallback)
		return utils.SendError(c, fiber.StatusBadGateway, fallback)
	}
}
