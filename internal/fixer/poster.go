package fixer

import (
	"context"
	"errors"
	"fmt"
	"linkfixer/pkg/domain"
	"linkfixer/pkg/logger"
	"linkfixer/pkg/metrics"
	"linkfixer/pkg/reddit"
	"linkfixer/pkg/serrors"
	"time"

	"go.uber.org/zap"
)

// Class is the classification of a failed post attempt.
type Class int

const (
	// ClassNone means the attempt succeeded.
	ClassNone Class = iota
	// ClassRateLimited: wait for the delay Reddit asked for, then retry.
	ClassRateLimited
	// ClassForbidden: the account may not comment here. Abort.
	ClassForbidden
	// ClassTransientNetwork: connection error or timeout. Retry after RetryTime.
	ClassTransientNetwork
	// ClassAPIPermanent: the thread is deleted, locked or archived. Abort.
	ClassAPIPermanent
	// ClassAPITransient: any other API error. Retry after RetryTime.
	ClassAPITransient
	// ClassUnknown: an error the client did not classify. Abort.
	ClassUnknown
)

func (c Class) String() string {
	switch c {
	case ClassNone:
		return "ok"
	case ClassRateLimited:
		return "rate_limited"
	case ClassForbidden:
		return "forbidden"
	case ClassTransientNetwork:
		return "network"
	case ClassAPIPermanent:
		return "gone"
	case ClassAPITransient:
		return "api"
	case ClassUnknown:
		return "unknown"
	}

	return fmt.Sprintf("class(%d)", int(c))
}

// Classify maps an error returned by reddit.Client to a Class.
func Classify(err error) Class {
	switch {
	case err == nil:
		return ClassNone
	case errors.Is(err, serrors.ErrRateLimited):
		return ClassRateLimited
	case errors.Is(err, serrors.ErrForbidden):
		return ClassForbidden
	case errors.Is(err, serrors.ErrUnavailable):
		return ClassTransientNetwork
	case errors.Is(err, serrors.ErrGone):
		return ClassAPIPermanent
	case errors.Is(err, serrors.ErrAPI):
		return ClassAPITransient
	default:
		return ClassUnknown
	}
}

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext is the default Sleeper.
func SleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err() //nolint: wrapcheck
	case <-t.C:
		return nil
	}
}

// Poster comments on submissions, retrying until the comment is posted or
// the failure is known to be permanent. There is no attempt limit.
type Poster struct {
	client    reddit.Client
	template  Template
	retryTime time.Duration
	sleep     Sleeper
	metrics   *metrics.Metrics
}

// NewPoster creates a Poster. A nil sleep uses SleepContext and a nil m
// records nothing.
func NewPoster(client reddit.Client, tmpl Template, retryTime time.Duration, sleep Sleeper, m *metrics.Metrics) *Poster {
	if sleep == nil {
		sleep = SleepContext
	}
	if m == nil {
		m = metrics.Noop()
	}

	return &Poster{
		client:    client,
		template:  tmpl,
		retryTime: retryTime,
		sleep:     sleep,
		metrics:   m,
	}
}

// Post comments the corrected link for slug on sub and returns the permalink
// of the new comment. Every attempt sends the same body.
func (p *Poster) Post(ctx context.Context, sub domain.Submission, slug string) (string, error) {
	body, err := p.template.Render(slug)
	if err != nil {
		return "", err
	}

	ctx = logger.WithFields(ctx, zap.String("permalink", sub.Permalink))

	for {
		start := time.Now()
		permalink, err := p.client.Reply(ctx, sub.ID, body)
		class := Classify(err)
		p.metrics.PostAttempt(ctx, class.String(), time.Since(start).Seconds())

		if err != nil && ctx.Err() != nil {
			return "", fmt.Errorf("could not post comment: %w", ctx.Err())
		}

		var delay time.Duration
		switch class {
		case ClassNone:
			logger.Info(ctx, "posted comment", zap.String("comment", permalink))

			return permalink, nil
		case ClassRateLimited:
			delay = p.retryTime
			if d, ok := serrors.RetryAfter(err); ok {
				delay = d
			}
			logger.Warn(ctx, "rate limit exceeded; retrying", zap.Duration("delay", delay), zap.Error(err))
		case ClassForbidden:
			logger.Error(ctx, "forbidden from posting comment", zap.Error(err))

			return "", fmt.Errorf("could not post comment: %w", err)
		case ClassTransientNetwork:
			delay = p.retryTime
			logger.Warn(ctx, "connection error when posting comment; retrying",
				zap.Duration("delay", delay), zap.Error(err))
		case ClassAPIPermanent:
			logger.Warn(ctx, "thread no longer accepts comments", zap.Error(err))

			return "", fmt.Errorf("could not post comment: %w", err)
		case ClassAPITransient:
			delay = p.retryTime
			logger.Warn(ctx, "API error when posting comment; retrying", zap.Duration("delay", delay), zap.Error(err))
		case ClassUnknown:
			logger.Error(ctx, "unexpected error when posting comment", zap.Error(err))

			return "", fmt.Errorf("could not post comment: %w", err)
		}

		if err := p.sleep(ctx, delay); err != nil {
			return "", fmt.Errorf("could not post comment: %w", err)
		}
	}
}
