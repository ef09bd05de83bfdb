package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/hirolabs/hirehub-api/internal/service"
	"github.com/hirolabs/hirehub-api/internal/utils"
)

// InterviewHandler exposes the voice interview endpoints including the live
// transcript websocket.
type InterviewHandler struct {
	service service.InterviewService
	logger  zerolog.Logger
}

// NewInterviewHandler constructs the handler.
func NewInterviewHandler(service service.InterviewService, logger zerolog.Logger) *InterviewHandler {
	return &InterviewHandler{
		service: service,
		logger:  logger.With().Str("component", "interview_handler").Logger(),
	}
}

// Register wires interview routes under the provided router group.
func (h *InterviewHandler) Register(router fiber.Router) {
	router.Post("/:id/interview/start", h.start)
	router.Post("/:id/interview/stop", h.stop)
	router.Get("/:id/interview", h.status)
	router.Delete("/:id/interview/transcript", h.clearTranscript)

	router.Use("/:id/interview/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	router.Get("/:id/interview/ws", websocket.New(h.stream))
}

func (h *InterviewHandler) start(c *fiber.Ctx) error {
	if err := h.service.Start(c.UserContext(), c.Params("id"), userIDFromContext(c)); err != nil {
		return h.handleError(c, err, "failed to start interview")
	}

	return utils.SendSuccess(c, "interview started", nil)
}

func (h *InterviewHandler) stop(c *fiber.Ctx) error {
	if err := h.service.Stop(c.Params("id"), userIDFromContext(c)); err != nil {
		return h.handleError(c, err, "failed to stop interview")
	}

	return utils.SendSuccess(c, "interview stopped", nil)
}

func (h *InterviewHandler) status(c *fiber.Ctx) error {
	result, err := h.service.Status(c.Params("id"), userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err, "failed to fetch interview status")
	}

	return utils.SendSuccess(c, "interview status", result)
}

func (h *InterviewHandler) clearTranscript(c *fiber.Ctx) error {
	if err := h.service.ClearTranscript(c.Params("id"), userIDFromContext(c)); err != nil {
		return h.handleError(c, err, "failed to clear transcript")
	}

	return utils.SendSuccess(c, "transcript cleared", nil)
}

// stream pushes transcript lines to the client as they are appended. The
// connection closes when the subscriber is cancelled or the peer goes away.
func (h *InterviewHandler) stream(conn *websocket.Conn) {
	sessionID := conn.Params("id")
	userID := websocketUserID(conn)
	if userID == "" {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(fiber.StatusUnauthorized, "user id missing"))
		_ = conn.Close()
		return
	}

	entries, cancel, err := h.service.Subscribe(sessionID, userID)
	if err != nil {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(fiber.StatusNotFound, "session not found"))
		_ = conn.Close()
		return
	}
	defer cancel()

	h.logger.Info().Str("session_id", sessionID).Msg("transcript websocket connected")

	// Reads only detect the peer closing; inbound frames are ignored.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case entry, ok := <-entries:
			if !ok {
				_ = conn.Close()
				<-done
				return
			}
			if err := conn.WriteJSON(entry); err != nil {
				h.logger.Debug().Err(err).Str("session_id", sessionID).Msg("transcript websocket write failed")
				_ = conn.Close()
				<-done
				return
			}
		case <-done:
			h.logger.Info().Str("session_id", sessionID).Msg("transcript websocket disconnected")
			return
		}
	}
}

func (h *InterviewHandler) handleError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, service.ErrInterviewNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "session not found")
	case errors.Is(err, service.ErrSessionForbidden):
		return utils.SendError(c, fiber.StatusForbidden, "forbidden")
	case errors.Is(err, service.ErrInterviewActive):
		return utils.SendError(c, fiber.StatusConflict, "interview already in progress")
	case errors.Is(err, service.ErrVoiceUnavailable):
		return utils.SendError(c, fiber.StatusServiceUnavailable, "voice interview unavailable")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg(fallback)
		return utils.SendError(c, fiber.StatusBadGateway, fallback)
	}
}
