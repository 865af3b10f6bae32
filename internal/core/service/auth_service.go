package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/bazarit/marketplace-api/internal/core/domain"
	"github.com/bazarit/marketplace-api/internal/core/ports"
)

// AuthConfig carries token secrets, lifetimes, and the deployment policy flag
// for OTP on login. Signup always requires OTP verification.
type AuthConfig struct {
	JWTSecret        string
	RefreshSecret    string
	AccessTTL        time.Duration
	RefreshTTL       time.Duration
	OTPRequiredLogin bool
}

func (c AuthConfig) withDefaults() AuthConfig {
	if c.AccessTTL <= 0 {
		c.AccessTTL = 24 * time.Hour
	}
	if c.RefreshTTL <= 0 {
		c.RefreshTTL = 7 * 24 * time.Hour
	}
	return c
}

// accessClaims are the typed claims carried by both credential kinds. The
// renewal credential additionally registers its ID server-side.
type accessClaims struct {
	Phone string `json:"phone"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService implements the signup/login/renewal/logout state machine on top
// of the OTP authority, the user store, and the session store.
type AuthService struct {
	users    ports.UserRepository
	otp      ports.OTPService
	sessions ports.SessionStore
	cfg      AuthConfig
}

func NewAuthService(users ports.UserRepository, otp ports.OTPService, sessions ports.SessionStore, cfg AuthConfig) *AuthService {
	return &AuthService{users: users, otp: otp, sessions: sessions, cfg: cfg.withDefaults()}
}

// Signup drives the two-leg registration flow. Without an OTP it issues a
// challenge and returns a pending result; with one it consumes the challenge
// and creates the account bound to the default buyer role.
func (s *AuthService) Signup(ctx context.Context, in ports.SignupInput) (*ports.SignupResult, error) {
	if in.Phone == "" || in.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	existing, err := s.users.FindByPhone(ctx, in.Phone)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrUserExists
	}

	if in.OTP == "" {
		issued, err := s.otp.IssueChallenge(ctx, in.Phone)
		if err != nil {
			return nil, err
		}
		return &ports.SignupResult{Pending: true, ExpiresAt: issued.ExpiresAt}, nil
	}

	if err := s.otp.ConsumeChallenge(ctx, in.Phone, in.OTP); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user, err := s.users.Create(ctx, &domain.User{
		Name:         in.Name,
		Phone:        in.Phone,
		PasswordHash: string(hash),
		RoleName:     domain.RoleBuyer,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	return &ports.SignupResult{User: user}, nil
}

// Login authenticates phone/password and, when the deployment requires it,
// the OTP leg. The password check always runs before any OTP side effect so a
// wrong password never triggers a challenge.
func (s *AuthService) Login(ctx context.Context, phone, password, otp string) (*ports.LoginResult, error) {
	if phone == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	if s.cfg.OTPRequiredLogin {
		if otp == "" {
			issued, err := s.otp.IssueChallenge(ctx, phone)
			if err != nil {
				return nil, err
			}
			return &ports.LoginResult{Pending: true, ExpiresAt: issued.ExpiresAt, User: user}, nil
		}
		if err := s.otp.ConsumeChallenge(ctx, phone, otp); err != nil {
			return nil, err
		}
	}

	access, err := s.mintToken(user, s.cfg.JWTSecret, s.cfg.AccessTTL, "")
	if err != nil {
		return nil, err
	}

	tokenID := uuid.NewString()
	refresh, err := s.mintToken(user, s.cfg.RefreshSecret, s.cfg.RefreshTTL, tokenID)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Put(ctx, tokenID, user.ID, s.cfg.RefreshTTL); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	return &ports.LoginResult{
		AccessToken:  access,
		RefreshToken: refresh,
		RefreshTTL:   s.cfg.RefreshTTL,
		User:         user,
	}, nil
}

// Refresh mints a new access credential from a valid, still-tracked renewal
// credential without re-checking password or OTP.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.parseToken(refreshToken, s.cfg.RefreshSecret)
	if err != nil {
		return "", domain.ErrSessionInvalid
	}

	live, err := s.sessions.Exists(ctx, claims.ID)
	if err != nil {
		return "", fmt.Errorf("check session: %w", err)
	}
	if !live {
		return "", domain.ErrSessionInvalid
	}

	user := &domain.User{ID: claims.Subject, Phone: claims.Phone, RoleName: claims.Role}
	return s.mintToken(user, s.cfg.JWTSecret, s.cfg.AccessTTL, "")
}

// Logout revokes the renewal credential. Logging out without one, or with an
// already-invalid one, is a no-op success.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	claims, err := s.parseToken(refreshToken, s.cfg.RefreshSecret)
	if err != nil {
		return nil
	}
	return s.sessions.Delete(ctx, claims.ID)
}

// VerifyAccess validates an access credential and returns the principal it
// carries, or fails. Synchronous verify-or-fail; no callbacks.
func (s *AuthService) VerifyAccess(token string) (*domain.Principal, error) {
	claims, err := s.parseToken(token, s.cfg.JWTSecret)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return &domain.Principal{ID: claims.Subject, Phone: claims.Phone, RoleName: claims.Role}, nil
}

func (s *AuthService) mintToken(user *domain.User, secret string, ttl time.Duration, tokenID string) (string, error) {
	now := time.Now()
	claims := accessClaims{
		Phone: user.Phone,
		Role:  user.RoleName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        tokenID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func (s *AuthService) parseToken(token, secret string) (*accessClaims, error) {
	claims := &accessClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, domain.ErrInvalidCredentials
	}
	return claims, nil
}
