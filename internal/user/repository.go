package user

import (
	"context"
	"database/sql"
	"errors"

	"storefront-api/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// pq unique_violation
const pgUniqueViolation = "23505"

type Repository interface {
	Create(ctx context.Context, username, email, passwordHash string) (User, error)
	FindByUsername(ctx context.Context, username string) (User, error)
	FindByID(ctx context.Context, id int64) (User, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, username, email, passwordHash string) (User, error) {
	log := logger.FromCtx(ctx)

	var u User
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, username, email, password_hash, role, is_active, created_at
	`, username, email, passwordHash).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation {
			switch pqErr.Constraint {
			case "users_username_key":
				return User{}, ErrUsernameExists
			case "users_email_key":
				return User{}, ErrEmailExists
			}
		}
		log.Error("db: failed to insert user",
			zap.String("username", username),
			zap.Error(err),
		)
		return User{}, err
	}

	return u, nil
}

func (r *repository) FindByUsername(ctx context.Context, username string) (User, error) {
	var u User
	err := r.db.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, role, is_active, created_at
		FROM users
		WHERE username = $1
	`, username).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	return u, err
}

func (r *repository) FindByID(ctx context.Context, id int64) (User, error) {
	var u User
	err := r.db.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, role, is_active, created_at
		FROM users
		WHERE id = $1
	`, id).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	return u, err
}
