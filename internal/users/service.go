package users

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"jobfit-backend/internal/shared/telemetry"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Sign(userID, email, role string) (string, error)
}

type Service struct {
	Repo   Repo
	Tokens TokenIssuer

	// bcryptCost is overridden in tests.
	bcryptCost int
}

func NewService(repo Repo, tokens TokenIssuer) *Service {
	return &Service{Repo: repo, Tokens: tokens, bcryptCost: bcrypt.DefaultCost}
}

// RegisterInput is the data needed to create a password account.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      string
}

// AuthResult is a signed token plus the user it was issued for.
type AuthResult struct {
	Token string
	User  User
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	if err := s.ready(); err != nil {
		return AuthResult{}, err
	}
	email := NormalizeEmail(in.Email)
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return AuthResult{}, fmt.Errorf("%w: email must be a valid address", ErrInvalidInput)
	}
	if len(in.Password) < MinPasswordLength {
		return AuthResult{}, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, MinPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost())
	if err != nil {
		return AuthResult{}, fmt.Errorf("hash password: %w", err)
	}

	user := User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Role:         ParseRole(in.Role),
		Provider:     ProviderPassword,
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		return AuthResult{}, err
	}
	created, err := s.Repo.GetByID(ctx, user.ID)
	if err != nil {
		return AuthResult{}, err
	}

	telemetry.Info("user.registered", map[string]any{"user_id": created.ID, "role": string(created.Role)})
	return s.issue(created)
}

func (s *Service) Login(ctx context.Context, email, password string) (AuthResult, error) {
	if err := s.ready(); err != nil {
		return AuthResult{}, err
	}
	user, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, err
	}
	if user.PasswordHash == "" {
		return AuthResult{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return AuthResult{}, ErrInvalidCredentials
	}
	return s.issue(user)
}

// OAuthProfile is the identity returned by an external provider.
type OAuthProfile struct {
	Provider  string
	Email     string
	FirstName string
	LastName  string
}

// UpsertOAuth signs in an externally authenticated user, creating a
// CANDIDATE account on first login. An existing account keeps its role and
// password.
func (s *Service) UpsertOAuth(ctx context.Context, p OAuthProfile) (AuthResult, error) {
	if err := s.ready(); err != nil {
		return AuthResult{}, err
	}
	email := NormalizeEmail(p.Email)
	if email == "" {
		return AuthResult{}, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}

	existing, err := s.Repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if p.FirstName != "" {
			existing.FirstName = p.FirstName
		}
		if p.LastName != "" {
			existing.LastName = p.LastName
		}
		if err := s.Repo.Update(ctx, existing); err != nil {
			return AuthResult{}, err
		}
		return s.issue(existing)
	case errors.Is(err, ErrNotFound):
		user := User{
			ID:        uuid.NewString(),
			Email:     email,
			FirstName: p.FirstName,
			LastName:  p.LastName,
			Role:      RoleCandidate,
			Provider:  p.Provider,
		}
		if err := s.Repo.Create(ctx, user); err != nil {
			return AuthResult{}, err
		}
		telemetry.Info("user.registered", map[string]any{"user_id": user.ID, "provider": p.Provider})
		return s.issue(user)
	default:
		return AuthResult{}, err
	}
}

func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return User{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, userID)
}

func (s *Service) issue(user User) (AuthResult, error) {
	token, err := s.Tokens.Sign(user.ID, user.Email, string(user.Role))
	if err != nil {
		return AuthResult{}, fmt.Errorf("sign token: %w", err)
	}
	return AuthResult{Token: token, User: user}, nil
}

func (s *Service) ready() error {
	if s == nil || s.Repo == nil || s.Tokens == nil {
		return errors.New("users service not configured")
	}
	return nil
}

func (s *Service) cost() int {
	if s.bcryptCost == 0 {
		return bcrypt.DefaultCost
	}
	return s.bcryptCost
}
