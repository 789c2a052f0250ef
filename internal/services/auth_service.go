package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/submisoon/assessment-service/internal/models"
	"github.com/submisoon/assessment-service/internal/repositories"
)

// AccessClaims is the JWT payload carried by issued access tokens.
type AccessClaims struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type authService struct {
	repo     repositories.Repository
	secret   []byte
	tokenTTL time.Duration
	clock    Clock
	logger   *slog.Logger
}

func NewAuthService(repo repositories.Repository, secret string, tokenTTL time.Duration, clock Clock, logger *slog.Logger) AuthService {
	return &authService{
		repo:     repo,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		clock:    clock,
		logger:   logger,
	}
}

func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	user, err := s.repo.User().GetByEmail(ctx, req.Email)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := s.clock.Now()
	expiresAt := now.Add(s.tokenTTL)

	claims := &AccessClaims{
		UserID: user.ID,
		Role:   string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	s.logger.Info("User logged in", "user_id", user.ID, "role", user.Role)

	return &models.LoginResponse{
		User: models.UserInfo{
			Name:  user.Name,
			Email: user.Email,
			Role:  string(user.Role),
		},
		ExpiresAt:   expiresAt.Format(time.RFC3339),
		AccessToken: token,
	}, nil
}

func (s *authService) VerifyToken(tokenString string) (uint, string, error) {
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, "", ErrInvalidCredentials
	}
	return claims.UserID, claims.Role, nil
}
