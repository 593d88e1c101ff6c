// Package auth owns user credentials: registration with salted password
// hashing and authentication with constant-time verification.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"fintrack/internal/core"
)

// Store defines the persistence operations required by the credential
// service. Only the hash is ever stored; plaintext passwords stay inside
// this package.
type Store interface {
	// CreateUser persists a new user and returns its id. Returns
	// core.ErrDuplicateUsername if the username is taken.
	CreateUser(ctx context.Context, username, passwordHash string) (int64, error)
	// UserCredentials returns the user id and stored password hash for a
	// username, or core.ErrNotFound.
	UserCredentials(ctx context.Context, username string) (int64, string, error)
}

type Service struct {
	store Store
	cost  int
}

// dummyHash is compared against when the username does not exist, so a
// failed login costs the same whether the user is missing or the password
// is wrong.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("fintrack-no-such-user"), bcrypt.MinCost)

func NewService(store Store, bcryptCost int) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{store: store, cost: bcryptCost}
}

// Register creates a new user with a salted bcrypt hash of the password.
func (s *Service) Register(ctx context.Context, username, password string) (int64, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return 0, core.ErrEmptyUsername
	}
	if password == "" {
		return 0, core.ErrEmptyPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	id, err := s.store.CreateUser(ctx, username, string(hash))
	if err != nil {
		return 0, err
	}

	slog.InfoContext(ctx, "User registered", "user_id", id, "username", username)
	return id, nil
}

// Authenticate verifies a username/password pair and returns the user id.
// A missing user and a wrong password both come back as
// core.ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (int64, error) {
	id, hash, err := s.store.UserCredentials(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			// Burn a compare anyway to keep timing uniform
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return 0, core.ErrInvalidCredentials
		}
		return 0, fmt.Errorf("load credentials: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return 0, core.ErrInvalidCredentials
	}

	return id, nil
}
