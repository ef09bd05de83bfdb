package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/hirolabs/hirehub-api/internal/dto"
	"github.com/hirolabs/hirehub-api/internal/models"
	"github.com/hirolabs/hirehub-api/internal/repository"
	"github.com/hirolabs/hirehub-api/pkg/recruiter"
)

// ErrInvalidCredentials indicates the backend rejected the login.
var ErrInvalidCredentials = errors.New("invalid credentials")

const tokenTTL = 24 * time.Hour

// AccountDirectory is the slice of the recruiting backend handling accounts.
type AccountDirectory interface {
	SignupUser(ctx context.Context, user recruiter.User) (recruiter.User, error)
	LoginUser(ctx context.Context, name, password string) (recruiter.User, error)
	SignupHR(ctx context.Context, hr recruiter.HR) (recruiter.HR, error)
	LoginHR(ctx context.Context, email, password string) (recruiter.HR, error)
}

// AuthService exchanges backend credentials for a verifiable session token
// and caches the signed-in record locally.
type AuthService interface {
	SignupUser(ctx context.Context, payload dto.UserSignupRequest) (dto.AuthResponse, error)
	LoginUser(ctx context.Context, payload dto.UserLoginRequest) (dto.AuthResponse, error)
	SignupHR(ctx context.Context, payload dto.HRSignupRequest) (dto.AuthResponse, error)
	LoginHR(ctx context.Context, payload dto.HRLoginRequest) (dto.AuthResponse, error)
}

type authService struct {
	accounts  AccountDirectory
	profiles  repository.ProfileRepository
	validator *validator.Validate
	secret    string
	logger    zerolog.Logger
}

// NewAuthService constructs the auth service.
func NewAuthService(accounts AccountDirectory, profiles repository.ProfileRepository, validate *validator.Validate, secret string, logger zerolog.Logger) AuthService {
	return &authService{
		accounts:  accounts,
		profiles:  profiles,
		validator: validate,
		secret:    secret,
		logger:    logger.With().Str("component", "auth_service").Logger(),
	}
}

func (s *authService) SignupUser(ctx context.Context, payload dto.UserSignupRequest) (dto.AuthResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AuthResponse{}, err
	}

	user, err := s.accounts.SignupUser(ctx, recruiter.User{Name: payload.Name, Password: payload.Password})
	if err != nil {
		return dto.AuthResponse{}, fmt.Errorf("signup user: %w", err)
	}

	return s.establish(ctx, models.ProfileKindCandidate, user.ID, user.Name, "", map[string]interface{}{"user_name": user.Name})
}

func (s *authService) LoginUser(ctx context.Context, payload dto.UserLoginRequest) (dto.AuthResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AuthResponse{}, err
	}

	user, err := s.accounts.LoginUser(ctx, payload.Name, payload.Password)
	if err != nil {
		if errors.Is(err, recruiter.ErrUnauthorized) || errors.Is(err, recruiter.ErrNotFound) {
			return dto.AuthResponse{}, ErrInvalidCredentials
		}
		return dto.AuthResponse{}, fmt.Errorf("login user: %w", err)
	}

	return s.establish(ctx, models.ProfileKindCandidate, user.ID, user.Name, "", map[string]interface{}{"user_name": user.Name})
}

func (s *authService) SignupHR(ctx context.Context, payload dto.HRSignupRequest) (dto.AuthResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AuthResponse{}, err
	}

	hr, err := s.accounts.SignupHR(ctx, recruiter.HR{Email: payload.Email, Username: payload.Username, Password: payload.Password})
	if err != nil {
		return dto.AuthResponse{}, fmt.Errorf("signup hr: %w", err)
	}

	return s.establish(ctx, models.ProfileKindHR, hr.ID, hr.Username, hr.Email, map[string]interface{}{"hr_email": hr.Email, "hr_username": hr.Username})
}

func (s *authService) LoginHR(ctx context.Context, payload dto.HRLoginRequest) (dto.AuthResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AuthResponse{}, err
	}

	hr, err := s.accounts.LoginHR(ctx, payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, recruiter.ErrUnauthorized) || errors.Is(err, recruiter.ErrNotFound) {
			return dto.AuthResponse{}, ErrInvalidCredentials
		}
		return dto.AuthResponse{}, fmt.Errorf("login hr: %w", err)
	}

	return s.establish(ctx, models.ProfileKindHR, hr.ID, hr.Username, hr.Email, map[string]interface{}{"hr_email": hr.Email, "hr_username": hr.Username})
}

func (s *authService) establish(ctx context.Context, kind, remoteID, name, email string, raw map[string]interface{}) (dto.AuthResponse, error) {
	token, err := s.issueToken(remoteID, kind)
	if err != nil {
		return dto.AuthResponse{}, fmt.Errorf("issue token: %w", err)
	}

	profile := models.Profile{
		Kind:     kind,
		RemoteID: remoteID,
		Email:    email,
		Name:     name,
		Token:    token,
		Raw:      datatypes.JSONMap(raw),
	}
	if err := s.profiles.Upsert(ctx, &profile); err != nil {
		// Local cache trouble must not block the login itself.
		s.logger.Warn().Err(err).Str("remote_id", remoteID).Msg("failed to cache profile")
	}

	return dto.AuthResponse{Token: token, UserID: remoteID, Kind: kind, Name: name}, nil
}

func (s *authService) issueToken(remoteID, role string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  remoteID,
		"role": role,
		"iat":  now.Unix(),
		"exp":  now.Add(tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}
