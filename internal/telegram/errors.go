package telegram

import (
	"errors"
	"fmt"
)

var (
	ErrMissingToken = errors.New("missing TELEGRAM_BOT_TOKEN")
	ErrRateLimited  = errors.New("rate_limited")
	ErrFileTooLarge = errors.New("file exceeds download limit")
)

// APIError is a non-ok Bot API reply.
type APIError struct {
	Method      string
	Code        int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram %s: %d %s", e.Method, e.Code, e.Description)
}

func (e *APIError) Unwrap() error {
	if e.Code == 429 {
		return ErrRateLimited
	}
	return nil
}

func IsRateLimited(err error) bool { return errors.Is(err, ErrRateLimited) }
