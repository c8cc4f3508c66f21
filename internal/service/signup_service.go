package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"signup-be/internal/models"
)

// SignupSuccessMessage is returned with every accepted signup
const SignupSuccessMessage = "Thank you for signing up! Check your email to get started."

// ErrInvalidEmail is returned when the email is empty or has no "@"
var ErrInvalidEmail = errors.New("invalid email address")

// SignupService defines the interface for signup business logic
type SignupService interface {
	Signup(ctx context.Context, req *models.SignupRequest) (*models.SignupResponse, error)
}

type signupService struct {
	logger zerolog.Logger
}

// NewSignupService creates a new signup service. The logger is used when the
// request context carries none.
func NewSignupService(logger zerolog.Logger) SignupService {
	return &signupService{logger: logger}
}

// Signup accepts any email containing "@" and logs it.
// No other validation or normalization is applied; the email is echoed as given.
func (s *signupService) Signup(ctx context.Context, req *models.SignupRequest) (*models.SignupResponse, error) {
	if req == nil || !isAcceptableEmail(req.Email) {
		return nil, ErrInvalidEmail
	}

	// TODO: hand the address to an email service provider once one is chosen
	s.loggerFor(ctx).Info().Str("email", req.Email).Msg("new signup")

	return &models.SignupResponse{
		Message: SignupSuccessMessage,
		Email:   req.Email,
	}, nil
}

func (s *signupService) loggerFor(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &s.logger
}

func isAcceptableEmail(email string) bool {
	return email != "" && strings.Contains(email, "@")
}
