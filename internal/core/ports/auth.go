package ports

import (
	"context"
	"time"

	"github.com/bazarit/marketplace-api/internal/core/domain"
)

// UserRepository defines the interface for user account persistence.
type UserRepository interface {
	FindByPhone(ctx context.Context, phone string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}

// SessionStore tracks renewal credentials server-side so logout can revoke
// them before their natural expiry.
type SessionStore interface {
	Put(ctx context.Context, tokenID, userID string, ttl time.Duration) error
	Exists(ctx context.Context, tokenID string) (bool, error)
	Delete(ctx context.Context, tokenID string) error
}

// SignupInput carries the signup request payload. OTP is empty on the first
// leg (challenge not yet sent) and set on the second (verify and create).
type SignupInput struct {
	Name     string
	Phone    string
	Password string
	OTP      string
}

// SignupResult reports which leg of the signup flow completed: Pending means a
// challenge was issued and no account was created yet.
type SignupResult struct {
	Pending   bool
	ExpiresAt time.Time
	User      *domain.User
}

// LoginResult is a successful authentication: the access token for the JSON
// body and the renewal token destined for an HTTP-only cookie.
type LoginResult struct {
	Pending      bool
	ExpiresAt    time.Time
	AccessToken  string
	RefreshToken string
	RefreshTTL   time.Duration
	User         *domain.User
}

// AuthService implements the signup/login/renewal/logout state machine.
type AuthService interface {
	Signup(ctx context.Context, in SignupInput) (*SignupResult, error)
	Login(ctx context.Context, phone, password, otp string) (*LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Logout(ctx context.Context, refreshToken string) error
	VerifyAccess(token string) (*domain.Principal, error)
}
