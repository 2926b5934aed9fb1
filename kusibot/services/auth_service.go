package services

import (
	"context"
	"errors"
	"regexp"

	"golang.org/x/crypto/bcrypt"

	"github.com/didierrc/KusiBot/kusibot/sources/psql/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid username/email or password")
	ErrUserAlreadyExists  = errors.New("username or email already taken")

	emailPattern = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)
)

// UserStore is the persistence surface of the auth service.
type UserStore interface {
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, username, email, passwordHash string, isProfessional bool) (*models.User, error)
}

type AuthService struct {
	users UserStore
}

func NewAuthService(users UserStore) *AuthService {
	return &AuthService{users: users}
}

// Register creates a new user with a bcrypt password hash.
func (s *AuthService) Register(ctx context.Context, username, email, password string, isProfessional bool) (*models.User, error) {
	existing, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUserAlreadyExists
	}
	existing, err = s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUserAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return s.users.CreateUser(ctx, username, email, string(hash), isProfessional)
}

// Login authenticates by username or email plus password.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*models.User, error) {
	var (
		user *models.User
		err  error
	)
	if emailPattern.MatchString(identifier) {
		user, err = s.users.GetUserByEmail(ctx, identifier)
	} else {
		user, err = s.users.GetUserByUsername(ctx, identifier)
	}
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
