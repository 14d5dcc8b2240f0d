package user

import (
	"context"
	"fmt"
	"strings"

	"storefront-api/internal/logger"

	"go.uber.org/zap"
)

type Service interface {
	Register(ctx context.Context, username, email, password string) (string, User, error)
	Login(ctx context.Context, username, password string) (string, User, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Register(ctx context.Context, username, email, password string) (string, User, error) {
	log := logger.FromCtx(ctx)

	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if username == "" || email == "" || password == "" {
		return "", User{}, fmt.Errorf("%w: username, email and password are required", ErrInvalidInput)
	}

	hashed, err := HashPassword(password)
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		return "", User{}, err
	}

	u, err := s.repo.Create(ctx, username, email, hashed)
	if err != nil {
		log.Error("failed to create user", zap.String("username", username), zap.Error(err))
		return "", User{}, err
	}

	token, err := GenerateJWT(u.ID, u.Username, string(u.Role))
	if err != nil {
		log.Error("failed to generate jwt", zap.Int64("user_id", u.ID), zap.Error(err))
		return "", User{}, err
	}

	log.Info("register service completed",
		zap.Int64("user_id", u.ID),
		zap.String("username", username),
	)

	return token, u, nil
}

func (s *service) Login(ctx context.Context, username, password string) (string, User, error) {
	u, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return "", User{}, ErrInvalidCredentials
	}

	if !u.IsActive || !CheckPasswordHash(password, u.PasswordHash) {
		return "", User{}, ErrInvalidCredentials
	}

	token, err := GenerateJWT(u.ID, u.Username, string(u.Role))
	return token, u, err
}
