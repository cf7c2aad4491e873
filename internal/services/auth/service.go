// Package auth issues and validates the JWT credentials the HTTP layer
// requires before handing commands to the services.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hassan-nahid/digital-wallet-backend/internal/apperr"
	"github.com/hassan-nahid/digital-wallet-backend/internal/models"
	"github.com/hassan-nahid/digital-wallet-backend/internal/repositories"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 24 * time.Hour

type LoginResult struct {
	AccessToken string       `json:"accessToken"`
	User        *models.User `json:"user"`
}

type Service interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
}

type service struct {
	users     repositories.UserRepository
	jwtSecret string
}

func NewService(users repositories.UserRepository, jwtSecret string) Service {
	if users == nil {
		panic("user repository is required")
	}
	return &service{users: users, jwtSecret: jwtSecret}
}

func (s *service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperr.BadRequest("Invalid email or password")
		}
		return nil, err
	}
	if user.IsActive == models.StatusBlocked {
		return nil, apperr.Forbidden("User is blocked")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apperr.BadRequest("Invalid email or password")
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{AccessToken: token, User: user}, nil
}

func (s *service) generateToken(user *models.User) (string, error) {
	claims := &models.UserClaims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}
