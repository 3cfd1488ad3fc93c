package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"brigade-backend/internal/models"
	"brigade-backend/internal/repository"
)

const (
	defaultHashCost    = 12
	loginFailedMessage = "Login failed"
)

type tokenIssuer interface {
	GenerateAccessToken(accountID int64) (string, error)
}

type AuthService struct {
	accounts repository.AccountStore
	tokens   tokenIssuer
	throttle LoginThrottle
	validate *validator.Validate
	hashCost int

	// compared against when the username is unknown, so both failure
	// paths pay for one bcrypt comparison
	dummyHash []byte
}

// NewAuthService wires the auth flows. throttle may be nil.
func NewAuthService(accounts repository.AccountStore, tokens tokenIssuer, throttle LoginThrottle) *AuthService {
	s := &AuthService{
		accounts: accounts,
		tokens:   tokens,
		throttle: throttle,
		validate: newValidator(),
		hashCost: defaultHashCost,
	}
	s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("brigade-dummy-password"), s.hashCost)
	return s
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (s *AuthService) validateStruct(req interface{}) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fmt.Sprintf("%s is required", fe.Field())
	}
	return &ValidationError{Fields: fields}
}

// Register creates a non-admin account.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.Account, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := s.validateStruct(req); err != nil {
		return nil, err
	}
	return s.createAccount(ctx, req.Username, req.Password, false)
}

// CreateAdmin creates an account with the admin flag set. Admins are left
// out of the group list.
func (s *AuthService) CreateAdmin(ctx context.Context, username, password string) (*models.Account, error) {
	req := models.RegisterRequest{Username: strings.TrimSpace(username), Password: password}
	if err := s.validateStruct(req); err != nil {
		return nil, err
	}
	return s.createAccount(ctx, req.Username, req.Password, true)
}

func (s *AuthService) createAccount(ctx context.Context, username, password string, admin bool) (*models.Account, error) {
	_, err := s.accounts.GetByUsername(ctx, username)
	if err == nil {
		return nil, &ConflictError{Message: "Username already exists"}
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up username: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &models.Account{
		Username:     username,
		PasswordHash: string(hash),
		IsAdmin:      admin,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return nil, &ConflictError{Message: "Username already exists"}
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return account, nil
}

// Login verifies credentials and issues a session token. Unknown usernames
// and wrong passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthToken, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := s.validateStruct(req); err != nil {
		return nil, err
	}

	if s.throttle != nil {
		blocked, err := s.throttle.Blocked(ctx, req.Username)
		if err != nil {
			log.Printf("login throttle check failed: %v", err)
		} else if blocked {
			return nil, &RateLimitError{Message: "Too many failed login attempts. Please try again later."}
		}
	}

	account, err := s.accounts.GetByUsername(ctx, req.Username)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	hash := s.dummyHash
	if account != nil {
		hash = []byte(account.PasswordHash)
	}
	if bcrypt.CompareHashAndPassword(hash, []byte(req.Password)) != nil || account == nil {
		s.recordFailure(ctx, req.Username)
		return nil, &UnauthorizedError{Message: loginFailedMessage}
	}

	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, req.Username); err != nil {
			log.Printf("login throttle reset failed: %v", err)
		}
	}

	token, err := s.tokens.GenerateAccessToken(account.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	return &models.AuthToken{AccessToken: token}, nil
}

func (s *AuthService) recordFailure(ctx context.Context, username string) {
	if s.throttle == nil {
		return
	}
	if err := s.throttle.Failed(ctx, username); err != nil {
		log.Printf("login throttle update failed: %v", err)
	}
}

// Account resolves an authenticated account id.
func (s *AuthService) Account(ctx context.Context, id int64) (*models.Account, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &NotFoundError{Message: "User not found"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	return account, nil
}
