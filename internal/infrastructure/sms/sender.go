// Package sms holds the out-of-band code delivery collaborators. The service
// core only ever talks to ports.CodeSender; swapping in a real gateway is a
// wiring change in main.
package sms

import (
	"context"

	"github.com/rs/zerolog"
)

// LogSender writes codes to the log instead of a carrier. Development and
// test deployments only.
type LogSender struct {
	logger zerolog.Logger
}

func NewLogSender(logger zerolog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, phone, code string) error {
	s.logger.Info().Str("phone", phone).Str("code", code).Msg("sms code dispatched")
	return nil
}
