package ports

import (
	"context"
	"time"

	"github.com/bazarit/marketplace-api/internal/core/domain"
)

// ChallengeRepository persists OTP challenges. Replace must atomically
// supersede any prior challenge for the phone; ConsumeMatching must be a
// compare-and-set so only one concurrent caller can consume a given challenge.
type ChallengeRepository interface {
	Replace(ctx context.Context, challenge *domain.OtpChallenge) error
	ConsumeMatching(ctx context.Context, phone, code string, now time.Time) (*domain.OtpChallenge, error)
}

// RateLimiter counts challenge issuances per phone over a sliding window.
// Hit records one issuance attempt and returns the count inside the window.
type RateLimiter interface {
	Hit(ctx context.Context, phone string, window time.Duration) (int64, error)
}

// CodeSender delivers a one-time code out of band (SMS gateway or similar).
// Delivery failures must never affect challenge state.
type CodeSender interface {
	Send(ctx context.Context, phone, code string) error
}

// IssueResult is what callers may learn about a freshly issued challenge: the
// retry window, never the code itself.
type IssueResult struct {
	ExpiresAt time.Time
}

// OTPService issues and verifies one-time codes bound to a phone number.
type OTPService interface {
	IssueChallenge(ctx context.Context, phone string) (*IssueResult, error)
	ConsumeChallenge(ctx context.Context, phone, code string) error
}
