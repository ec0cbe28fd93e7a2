package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

const (
	RoleOrganizer = "organizer"
	tokenTTL      = 24 * time.Hour
)

type AuthService interface {
	// Login checks the organizer credentials and returns a signed HS256 token.
	Login(ctx context.Context, input LoginInput) (string, error)
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authService struct {
	organizerEmail string
	passwordHash   []byte
	secret         []byte
	now            func() time.Time
}

func NewAuthService(organizerEmail, passwordHash, jwtSecret string) AuthService {
	return &authService{
		organizerEmail: strings.ToLower(strings.TrimSpace(organizerEmail)),
		passwordHash:   []byte(passwordHash),
		secret:         []byte(jwtSecret),
		now:            time.Now,
	}
}

func (s *authService) Login(ctx context.Context, input LoginInput) (string, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return "", fmt.Errorf("%w: email and password are required", ErrValidationFailed)
	}
	if len(s.passwordHash) == 0 || subtle.ConstantTimeCompare([]byte(email), []byte(s.organizerEmail)) != 1 {
		return "", ErrInvalidCredentials
	}

	err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(input.Password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("failed to compare password hash: %w", err)
	}

	now := s.now()
	claims := jwt.MapClaims{
		"sub":  email,
		"role": RoleOrganizer,
		"iat":  now.Unix(),
		"exp":  now.Add(tokenTTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}
