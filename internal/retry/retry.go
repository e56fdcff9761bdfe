// Package retry re-runs mutating storage operations that failed transiently.
//
// The wrapped operation must be safe to re-run from scratch: it should open
// its own transaction and re-fetch any state it depends on, because a failed
// attempt leaves nothing behind.
package retry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pomokan/pomokan/internal/apperrors"
)

const (
	defaultMaxAttempts = 3
	defaultBackoffUnit = time.Second
)

// Classifier decides whether an error is worth retrying
type Classifier func(error) bool

type Policy struct {
	// Total attempts including the first one
	// If not set default is used
	MaxAttempts int

	// Base delay: attempt N waits 2^N * BackoffUnit before the next try
	// If not set default is used
	BackoffUnit time.Duration

	// IsTransient classifies errors; everything else is permanent
	// and surfaces immediately. Defaults to IsConnectionError
	IsTransient Classifier

	// sleep is swappable in tests
	sleep func(ctx context.Context, d time.Duration) error
}

func New() Policy {
	return Policy{}
}

// Do runs op, retrying transiently failed attempts with exponential backoff.
// When retries are exhausted it returns apperrors.ErrServiceUnavailable
// wrapped around the last attempt's error
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	maxAttempts := p.MaxAttempts
	if maxAttempts == 0 {
		maxAttempts = defaultMaxAttempts
	}

	unit := p.BackoffUnit
	if unit == 0 {
		unit = defaultBackoffUnit
	}

	isTransient := p.IsTransient
	if isTransient == nil {
		isTransient = IsConnectionError
	}

	sleep := p.sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		err = op(ctx)
		if err == nil {
			return nil
		}

		if !isTransient(err) {
			return err
		}

		if attempt == maxAttempts-1 {
			break
		}

		// 1, 2, 4... units between attempts
		if serr := sleep(ctx, (1<<attempt)*unit); serr != nil {
			return serr
		}
	}

	return fmt.Errorf("%w: %d attempts failed, last error: %w", apperrors.ErrServiceUnavailable, maxAttempts, err)
}

// IsConnectionError reports whether err looks like a transient connection
// problem: pg connection-exception class, network timeout, reset or
// server-closed-connection signatures
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgerrcode.IsConnectionException(pgErr.Code)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	switch {
	case errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.ECONNABORTED),
		errors.Is(err, syscall.EPIPE),
		errors.Is(err, io.ErrUnexpectedEOF):
		return true
	}

	// Driver errors that carry no typed cause, match by message
	msg := strings.ToLower(err.Error())
	for _, signature := range []string{"connection reset", "server closed", "broken pipe", "timeout"} {
		if strings.Contains(msg, signature) {
			return true
		}
	}

	return false
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
