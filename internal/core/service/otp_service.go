package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/rs/zerolog"

	"github.com/bazarit/marketplace-api/internal/core/domain"
	"github.com/bazarit/marketplace-api/internal/core/ports"
)

// OTPConfig holds the three tuning constants of the OTP authority. Zero
// values fall back to the reference defaults (5m expiry, 3 per hour).
type OTPConfig struct {
	CodeTTL    time.Duration
	RateWindow time.Duration
	RateMax    int
}

func (c OTPConfig) withDefaults() OTPConfig {
	if c.CodeTTL <= 0 {
		c.CodeTTL = 5 * time.Minute
	}
	if c.RateWindow <= 0 {
		c.RateWindow = time.Hour
	}
	if c.RateMax <= 0 {
		c.RateMax = 3
	}
	return c
}

// OTPService issues and verifies phone-bound one-time codes.
type OTPService struct {
	challenges ports.ChallengeRepository
	limiter    ports.RateLimiter
	sender     ports.CodeSender
	cfg        OTPConfig
	logger     zerolog.Logger
	now        func() time.Time
}

func NewOTPService(
	challenges ports.ChallengeRepository,
	limiter ports.RateLimiter,
	sender ports.CodeSender,
	cfg OTPConfig,
	logger zerolog.Logger,
) *OTPService {
	return &OTPService{
		challenges: challenges,
		limiter:    limiter,
		sender:     sender,
		cfg:        cfg.withDefaults(),
		logger:     logger,
		now:        time.Now,
	}
}

// IssueChallenge creates a fresh challenge for phone and hands the code to the
// delivery channel. Any prior challenge for the phone is superseded. The code
// never leaves this package through the return value.
func (s *OTPService) IssueChallenge(ctx context.Context, phone string) (*ports.IssueResult, error) {
	if phone == "" {
		return nil, domain.ErrInvalidCredentials
	}

	count, err := s.limiter.Hit(ctx, phone, s.cfg.RateWindow)
	if err != nil {
		return nil, fmt.Errorf("otp rate limit: %w", err)
	}
	if count > int64(s.cfg.RateMax) {
		s.logger.Warn().Str("phone", phone).Int64("count", count).Msg("otp request rate limited")
		return nil, domain.ErrOTPRateLimited
	}

	code, err := generateCode()
	if err != nil {
		return nil, fmt.Errorf("otp code generation: %w", err)
	}

	now := s.now().UTC()
	challenge := &domain.OtpChallenge{
		Phone:     phone,
		Code:      code,
		Verified:  false,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.CodeTTL),
	}

	if err := s.challenges.Replace(ctx, challenge); err != nil {
		return nil, fmt.Errorf("otp persist: %w", err)
	}

	// Delivery is out of band. A send failure leaves the challenge valid: the
	// caller can retry delivery or re-issue, which supersedes this record.
	if err := s.sender.Send(ctx, phone, code); err != nil {
		s.logger.Error().Err(err).Str("phone", phone).Msg("otp delivery failed")
	}

	s.logger.Info().Str("phone", phone).Time("expires_at", challenge.ExpiresAt).Msg("otp issued")
	return &ports.IssueResult{ExpiresAt: challenge.ExpiresAt}, nil
}

// ConsumeChallenge verifies code against the live challenge for phone and
// marks it used. A challenge verifies at most once; expired or already
// consumed challenges fail with ErrOTPInvalid.
func (s *OTPService) ConsumeChallenge(ctx context.Context, phone, code string) error {
	if phone == "" || code == "" {
		return domain.ErrOTPInvalid
	}

	challenge, err := s.challenges.ConsumeMatching(ctx, phone, code, s.now().UTC())
	if err != nil {
		return err
	}
	if challenge == nil {
		return domain.ErrOTPInvalid
	}

	s.logger.Info().Str("phone", phone).Msg("otp verified")
	return nil
}

// generateCode returns a 6-digit code in [100000, 999999] from crypto/rand.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
