package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/yukikurage/toondo/internal/constants"
	"github.com/yukikurage/toondo/internal/models"
	"github.com/yukikurage/toondo/internal/repository"
	"github.com/yukikurage/toondo/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUsernameTaken        = errors.New("username already exists")
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrPasswordTooShort     = errors.New("password too short")
	ErrInvalidUsername      = errors.New("invalid username")
	ErrUserNotFound         = errors.New("user not found")
	ErrFailedToHashPassword = errors.New("failed to hash password")
	ErrFailedToCreateUser   = errors.New("failed to create user")
)

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo repository.UserRepository
	storage  repository.StorageRepository
	newID    func() string
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, storage repository.StorageRepository) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		storage:  storage,
		newID:    utils.NewID,
	}
}

// SignupInput represents the required information to create a new user.
type SignupInput struct {
	Username    string
	Password    string
	DisplayName string
	AvatarURL   string
}

// Signup creates a new user.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	if n := utf8.RuneCountInString(username); n < constants.MinUsernameLength || n > constants.MaxUsernameLength {
		return nil, ErrInvalidUsername
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	if _, err := s.userRepo.FindByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	displayName := strings.TrimSpace(input.DisplayName)
	if displayName == "" {
		displayName = username
	}
	avatarURL := strings.TrimSpace(input.AvatarURL)
	if avatarURL == "" {
		avatarURL = DefaultAvatarURL(displayName)
	}

	user := &models.User{
		ID:           s.newID(),
		Username:     username,
		PasswordHash: string(hashedPassword),
		DisplayName:  displayName,
		AvatarURL:    avatarURL,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("%w: %v", ErrFailedToCreateUser, err)
	}

	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Username string
	Password string
}

// Login verifies credentials and returns the authenticated user. The user is
// also recorded as the most recent login.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.storage.Put(ctx, constants.StorageKeyCurrentUser, []byte(user.ID)); err != nil {
		return nil, fmt.Errorf("failed to record current user: %w", err)
	}

	return user, nil
}

// Logout forgets the most recent login.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.storage.Delete(ctx, constants.StorageKeyCurrentUser); err != nil {
		return fmt.Errorf("failed to clear current user: %w", err)
	}
	return nil
}

// CurrentUser returns the most recently logged in user, if any.
func (s *AuthService) CurrentUser(ctx context.Context) (*models.User, error) {
	id, err := s.storage.Get(ctx, constants.StorageKeyCurrentUser)
	if err != nil {
		return nil, fmt.Errorf("failed to read current user: %w", err)
	}
	if len(id) == 0 {
		return nil, ErrUserNotFound
	}
	return s.GetUser(ctx, string(id))
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// ListUsers returns every registered user.
func (s *AuthService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// DefaultAvatarURL is the placeholder avatar showing the initial of name.
func DefaultAvatarURL(name string) string {
	initial := "?"
	if r, _ := utf8.DecodeRuneInString(strings.TrimSpace(name)); r != utf8.RuneError {
		initial = string(unicode.ToUpper(r))
	}
	return "https://placehold.co/100x100.png?text=" + url.QueryEscape(initial)
}
