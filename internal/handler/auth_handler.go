package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/hirolabs/hirehub-api/internal/dto"
	"github.com/hirolabs/hirehub-api/internal/service"
	"github.com/hirolabs/hirehub-api/internal/utils"
)

// AuthHandler exposes candidate and HR signup/login endpoints.
type AuthHandler struct {
	service service.AuthService
	logger  zerolog.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(service service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register wires auth routes under the provided router group.
func (h *AuthHandler) Register(router fiber.Router) {
	router.Post("/user/signup", h.signupUser)
	router.Post("/user/login", h.loginUser)
	router.Post("/hr/signup", h.signupHR)
	router.Post("/hr/login", h.loginHR)
}

func (h *AuthHandler) signupUser(c *fiber.Ctx) error {
	var payload dto.UserSignupRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.SignupUser(c.UserContext(), payload)
	if err != nil {
		return h.handleError(c, err, "signup failed")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "account created", result)
}

func (h *AuthHandler) loginUser(c *fiber.Ctx) error {
	var payload dto.UserLoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.LoginUser(c.UserContext(), payload)
	if err != nil {
		return h.handleError(c, err, "login failed")
	}

	return utils.SendSuccess(c, "login successful", result)
}

func (h *AuthHandler) signupHR(c *fiber.Ctx) error {
	var payload dto.HRSignupRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.SignupHR(c.UserContext(), payload)
	if err != nil {
		return h.handleError(c, err, "signup failed")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "account created", result)
}

func (h *AuthHandler) loginHR(c *fiber.Ctx) error {
	var payload dto.HRLoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.LoginHR(c.UserContext(), payload)
	if err != nil {
		return h.handleError(c, err, "login failed")
	}

	return utils.SendSuccess(c, "login successful", result)
}

func (h *AuthHandler) handleError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		return utils.SendError(c, fiber.StatusUnauthorized, "invalid credentials")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg(fallback)
		return utils.SendError(c, fiber.StatusBadGateway, fallback)
	}
}
