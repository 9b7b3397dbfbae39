package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"MusicFlow/logger"
	"MusicFlow/model"
	"MusicFlow/repository"

	"github.com/google/uuid"
)

// ErrInvalidCredentials is returned by Login for an unknown email or a wrong
// password alike.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Session is what a successful register or login returns to the client.
type Session struct {
	Token string           `json:"token"`
	User  model.PublicUser `json:"user"`
}

// Service implements account registration, login and token checks.
type Service struct {
	users  repository.UserRepository
	secret string
	now    func() time.Time
}

func NewService(users repository.UserRepository, secret string) *Service {
	return &Service{users: users, secret: secret, now: time.Now}
}

// Register creates an account and issues a token for it.
func (s *Service) Register(ctx context.Context, username, email, password string) (*Session, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	switch {
	case username == "":
		return nil, model.NewValidationError("username", "is required")
	case email == "":
		return nil, model.NewValidationError("email", "is required")
	case password == "":
		return nil, model.NewValidationError("password", "is required")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	user, err := s.users.CreateUser(ctx, model.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
		Preferences:  map[string]interface{}{},
	})
	if err != nil {
		return nil, err
	}

	logger.Info("user registered", logger.String("userId", user.ID))
	return s.session(user)
}

// Login checks the credentials and issues a token.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, model.NewValidationError("", "email and password are required")
	}
	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return s.session(user)
}

// Authenticate resolves a bearer token to its user. A valid token whose
// user no longer exists is rejected with ErrInvalidToken.
func (s *Service) Authenticate(ctx context.Context, token string) (*model.User, error) {
	claims, err := ParseToken(s.secret, token)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) session(user *model.User) (*Session, error) {
	token, err := GenerateToken(s.secret, user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token for %s: %w", user.ID, err)
	}
	return &Session{Token: token, User: user.Public()}, nil
}
