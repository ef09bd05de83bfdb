package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/hirolabs/hirehub-api/internal/dto"
	"github.com/hirolabs/hirehub-api/internal/handler"
	"github.com/hirolabs/hirehub-api/internal/service"
)

type mockSessionService struct {
	startResult  dto.SessionResponse
	getResult    dto.SessionResponse
	runResult    dto.RunResponse
	submitResult dto.SessionResponse
	err          error

	lastUserID string
	lastID     string
}

func (m *mockSessionService) Start(_ context.Context, userID string, payload dto.StartSessionRequest) (dto.SessionResponse, error) {
	m.lastUserID = userID
	if m.err != nil {
		return dto.SessionResponse{}, m.err
	}
	return m.startResult, nil
}

func (m *mockSessionService) Get(_ context.Context, id, userID string) (dto.SessionResponse, error) {
	m.lastID = id
	m.lastUserID = userID
	if m.err != nil {
		return dto.SessionResponse{}, m.err
	}
	return m.getResult, nil
}

func (m *mockSessionService) SwitchLanguage(_ context.Context, id, userID string, payload dto.SwitchLanguageRequest) (dto.SessionResponse, error) {
	if m.err != nil {
		return dto.SessionResponse{}, m.err
	}
	return m.getResult, nil
}

func (m *mockSessionService) UpdateCode(_ context.Context, id, userID string, payload dto.UpdateCodeRequest) error {
	return m.err
}

func (m *mockSessionService) Run(_ context.Context, id, userID string) (dto.RunResponse, error) {
	if m.err != nil {
		return dto.RunResponse{}, m.err
	}
	return m.runResult, nil
}

func (m *mockSessionService) Submit(_ context.Context, id, userID string) (dto.SessionResponse, error) {
	if m.err != nil {
		return dto.SessionResponse{}, m.err
	}
	return m.submitResult, nil
}

func (m *mockSessionService) Shutdown() {}

func newSessionApp(svc service.SessionService) *fiber.App {
	app := fiber.New()
	group := app.Group("/api/v1/sessions", func(c *fiber.Ctx) error {
		c.Locals("user_id", "user-1")
		return c.Next()
	})
	handler.NewSessionHandler(svc, zerolog.New(io.Discard)).Register(group)
	return app
}

func decodeResponse(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()

	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestSessionHandler_StartSuccess(t *testing.T) {
	svc := &mockSessionService{startResult: dto.SessionResponse{ID: "s-1", Phase: "in_progress", Language: "javascript"}}
	app := newSessionApp(svc)

	body, err := json.Marshal(dto.StartSessionRequest{JobID: "job-1"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.Equal(t, "user-1", svc.lastUserID)

	var response struct {
		Success bool                `json:"success"`
		Data    dto.SessionResponse `json:"data"`
		Message string              `json:"message"`
	}
	decodeResponse(t, resp, &response)
	require.True(t, response.Success)
	require.Equal(t, "s-1", response.Data.ID)
}

func TestSessionHandler_RunSuccess(t *testing.T) {
	svc := &mockSessionService{runResult: dto.RunResponse{Category: "success", Output: "✅ Output:\n2"}}
	app := newSessionApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/s-1/run", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Data dto.RunResponse `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.Equal(t, "success", response.Data.Category)
}

func TestSessionHandler_ErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		statusCode int
	}{
		{name: "not found", err: service.ErrSessionNotFound, statusCode: fiber.StatusNotFound},
		{name: "forbidden", err: service.ErrSessionForbidden, statusCode: fiber.StatusForbidden},
		{name: "attempt in progress", err: service.ErrAttemptInProgress, statusCode: fiber.StatusConflict},
		{name: "not started", err: service.ErrSessionNotStarted, statusCode: fiber.StatusConflict},
		{name: "finished", err: service.ErrSessionFinished, statusCode: fiber.StatusConflict},
		{name: "superseded", err: service.ErrRunSuperseded, statusCode: fiber.StatusConflict},
		{name: "judge unavailable", err: service.ErrJudgeUnavailable, statusCode: fiber.StatusServiceUnavailable},
		{name: "generic", err: errors.New("boom"), statusCode: fiber.StatusBadGateway},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newSessionApp(&mockSessionService{err: tc.err})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/s-1", nil)
			resp, err := app.Test(req)
			require.NoError(t, err)
			require.Equal(t, tc.statusCode, resp.StatusCode)
		})
	}
}

func TestSessionHandler_StartRequiresUser(t *testing.T) {
	app := fiber.New()
	handler.NewSessionHandler(&mockSessionService{}, zerolog.New(io.Discard)).Register(app.Group("/api/v1/sessions"))

	body, err := json.Marshal(dto.StartSessionRequest{JobID: "job-1"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
