package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
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

type mockAuthService struct {
	result dto.AuthResponse
	err    error
}

func (m *mockAuthService) SignupUser(_ context.Context, payload dto.UserSignupRequest) (dto.AuthResponse, error) {
	if m.err != nil {
		return dto.AuthResponse{}, m.err
	}
	return m.result, nil
}

func (m *mockAuthService) LoginUser(_ context.Context, payload dto.UserLoginRequest) (dto.AuthResponse, error) {
	if m.err != nil {
		return dto.AuthResponse{}, m.err
	}
	return m.result, nil
}

func (m *mockAuthService) SignupHR(_ context.Context, payload dto.HRSignupRequest) (dto.AuthResponse, error) {
	if m.err != nil {
		return dto.AuthResponse{}, m.err
	}
	return m.result, nil
}

func (m *mockAuthService) LoginHR(_ context.Context, payload dto.HRLoginRequest) (dto.AuthResponse, error) {
	if m.err != nil {
		return dto.AuthResponse{}, m.err
	}
	return m.result, nil
}

func newAuthApp(svc service.AuthService) *fiber.App {
	app := fiber.New()
	handler.NewAuthHandler(svc, zerolog.New(io.Discard)).Register(app.Group("/api/v1/auth"))
	return app
}

func TestAuthHandler_LoginUserSuccess(t *testing.T) {
	svc := &mockAuthService{result: dto.AuthResponse{Token: "jwt", UserID: "u-1", Kind: "candidate", Name: "alice"}}
	app := newAuthApp(svc)

	body, err := json.Marshal(dto.UserLoginRequest{Name: "alice", Password: "hunter22xx"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/user/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Success bool             `json:"success"`
		Data    dto.AuthResponse `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.True(t, response.Success)
	require.Equal(t, "jwt", response.Data.Token)
	require.Equal(t, "candidate", response.Data.Kind)
}

func TestAuthHandler_LoginRejected(t *testing.T) {
	app := newAuthApp(&mockAuthService{err: service.ErrInvalidCredentials})

	body, err := json.Marshal(dto.HRLoginRequest{Email: "hr@corp.test", Password: "wrong-pass"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/hr/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthHandler_SignupCreated(t *testing.T) {
	svc := &mockAuthService{result: dto.AuthResponse{Token: "jwt", UserID: "hr-1", Kind: "hr", Name: "bob"}}
	app := newAuthApp(svc)

	body, err := json.Marshal(dto.HRSignupRequest{
		Email:           "hr@corp.test",
		Username:        "bob",
		Password:        "hunter22xx",
		ConfirmPassword: "hunter22xx",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/hr/signup", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
}
