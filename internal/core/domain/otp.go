package domain

import (
	"errors"
	"time"
)

var ErrOTPRateLimited = errors.New("too many OTP requests")
var ErrOTPInvalid = errors.New("invalid or expired OTP")

// OtpChallenge is one outstanding phone verification attempt. A phone holds at
// most one live challenge; issuing a new one supersedes any prior challenge.
type OtpChallenge struct {
	ID        string
	Phone     string
	Code      string
	Verified  bool
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the challenge can no longer be consumed at t.
func (c *OtpChallenge) Expired(t time.Time) bool {
	return t.After(c.ExpiresAt)
}
