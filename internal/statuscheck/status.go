package statuscheck

import (
	"context"
	"errors"
	"time"
)

// Pinger models a dependency that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// Checker aggregates health checks for the external dependencies of the bot.
type Checker struct {
	redis      Pinger
	s3         Pinger
	telegram   Pinger
	pdfBackend string
	inFlight   func() int
	timeout    time.Duration
}

// Options configures the Checker. Nil pingers are reported as not configured.
type Options struct {
	Redis      Pinger
	S3         Pinger
	Telegram   Pinger
	PDFBackend string
	// InFlight reports how many chats hold or await the per-chat lock.
	InFlight   func() int
	Timeout    time.Duration
}

// Status represents the readiness of a subsystem.
type Status struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// Summary bundles all subsystem statuses.
type Summary struct {
	Redis    Status `json:"redis"`
	S3       Status `json:"s3"`
	Telegram Status `json:"telegram"`
	PDF      Status `json:"pdf"`

	ActiveChats int `json:"active_chats"`
}

// Healthy reports whether every configured dependency answered.
func (s Summary) Healthy() bool {
	for _, st := range []Status{s.Redis, s.S3, s.Telegram, s.PDF} {
		if !st.OK && st.Message != notConfigured {
			return false
		}
	}
	return true
}

const notConfigured = "Not configured"

// New creates a new Checker with the provided options.
func New(opts Options) *Checker {
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	return &Checker{
		redis:      opts.Redis,
		s3:         opts.S3,
		telegram:   opts.Telegram,
		pdfBackend: opts.PDFBackend,
		inFlight:   opts.InFlight,
		timeout:    opts.Timeout,
	}
}

// Summary returns the current status snapshot.
func (c *Checker) Summary(ctx context.Context) Summary {
	sum := Summary{
		Redis:    c.check(ctx, c.redis, "Connected"),
		S3:       c.check(ctx, c.s3, "Connected"),
		Telegram: c.check(ctx, c.telegram, "Available"),
		PDF:      c.checkPDF(),
	}
	if c.inFlight != nil {
		sum.ActiveChats = c.inFlight()
	}
	return sum
}

func (c *Checker) check(ctx context.Context, p Pinger, okMsg string) Status {
	if p == nil {
		return Status{OK: false, Message: notConfigured}
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		return Status{OK: false, Message: trimError(err)}
	}
	return Status{OK: true, Message: okMsg}
}

func (c *Checker) checkPDF() Status {
	if c.pdfBackend == "" {
		return Status{OK: false, Message: notConfigured}
	}
	return Status{OK: true, Message: "Backend " + c.pdfBackend}
}

func trimError(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}
	msg := err.Error()
	if len(msg) > 120 {
		return msg[:120]
	}
	return msg
}
