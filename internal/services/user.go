package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"eventhub/internal/domain"
)

const (
	minPasswordLen = 8
	minUsernameLen = 3
	maxUsernameLen = 30
)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type userService struct {
	userRepo     domain.UserRepository
	hasher       domain.PasswordHasher
	tokenIssuer  domain.TokenIssuer
	tokenExpiry  time.Duration
	emailService domain.EmailService
	logger       *slog.Logger
}

// NewUserService creates the AuthService backed by the given repository and auth ports.
// emailService may be nil, in which case no welcome email is sent.
func NewUserService(userRepo domain.UserRepository, hasher domain.PasswordHasher, tokenIssuer domain.TokenIssuer, tokenExpiry time.Duration, emailService domain.EmailService, logger *slog.Logger) domain.AuthService {
	return &userService{
		userRepo:     userRepo,
		hasher:       hasher,
		tokenIssuer:  tokenIssuer,
		tokenExpiry:  tokenExpiry,
		emailService: emailService,
		logger:       logger,
	}
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

func (s *userService) Register(ctx context.Context, username, email, password string) (string, *domain.User, error) {
	username = strings.TrimSpace(username)
	email = normalizeEmail(email)
	if n := utf8.RuneCountInString(username); n < minUsernameLen || n > maxUsernameLen {
		return "", nil, fmt.Errorf("%w: username must be %d-%d characters", domain.ErrInvalidInput, minUsernameLen, maxUsernameLen)
	}
	if !emailRegexp.MatchString(email) {
		return "", nil, fmt.Errorf("%w: invalid email format", domain.ErrInvalidInput)
	}
	if len(password) < minPasswordLen {
		return "", nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLen)
	}

	salt, err := s.hasher.GenerateSalt()
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	hash, err := s.hasher.Hash(salt, password)
	if err != nil {
		return "", nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := domain.NewUser(username, email, hash, salt, time.Now())
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateUser) {
			return "", nil, err
		}
		return "", nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.tokenIssuer.Issue(user.ID, user.Username, s.tokenExpiry)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	if s.emailService != nil {
		data := &domain.WelcomeMessageEmailData{Email: user.Email, Username: user.Username}
		if err := s.emailService.SendWelcomeMessage(ctx, data); err != nil {
			// The account exists; a mail outage must not fail registration.
			s.logger.WarnContext(ctx, "welcome email failed", "user_id", user.ID, "err", err)
		}
	}
	return token, user, nil
}

func (s *userService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to get user: %w", err)
	}
	if err := s.hasher.Compare(user.PasswordHash, user.Salt, password); err != nil {
		return "", nil, domain.ErrInvalidCredentials
	}
	token, err := s.tokenIssuer.Issue(user.ID, user.Username, s.tokenExpiry)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, user, nil
}

func (s *userService) Me(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
