// Package feed turns the newest-submissions listing into a stream. Every
// submission is emitted once, oldest first, for as long as the stream runs.
package feed

import (
	"context"
	"errors"
	"linkfixer/internal/config"
	"linkfixer/pkg/domain"
	"linkfixer/pkg/logger"
	"linkfixer/pkg/reddit"
	"linkfixer/pkg/serrors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/golang/groupcache/lru"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// minSeen is the smallest number of submission IDs remembered.
const minSeen = 1000

// Options configure the Poller.
type Options struct {
	// Subreddit is the scope of the listing; reddit.AllSubreddits for all.
	Subreddit string
	// Limit is the number of submissions requested per poll.
	Limit int
	// Interval is the minimum time between two polls.
	Interval time.Duration
	// MaxBackoff caps the wait after consecutive failed polls.
	MaxBackoff time.Duration
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		Subreddit:  cfg.Bot.Subreddit,
		Limit:      cfg.Bot.PollLimit,
		Interval:   cfg.Bot.PollInterval,
		MaxBackoff: 2 * time.Minute,
	}
}

// Poller polls the listing and remembers what it has emitted.
type Poller struct {
	client  reddit.Client
	options Options
	limiter *rate.Limiter
	// seen is only touched by the polling goroutine.
	seen *lru.Cache
}

// New creates a Poller.
func New(client reddit.Client, options Options) *Poller {
	if options.Subreddit == "" {
		options.Subreddit = reddit.AllSubreddits
	}
	if options.Limit <= 0 {
		options.Limit = 100
	}

	return &Poller{
		client:  client,
		options: options,
		limiter: rate.NewLimiter(rate.Every(options.Interval), 1),
		seen:    lru.New(max(minSeen, 10*options.Limit)),
	}
}

// Stream starts polling and returns the channel submissions are sent on. The
// channel is closed once ctx is done.
func (p *Poller) Stream(ctx context.Context) <-chan domain.Submission {
	out := make(chan domain.Submission)
	go func() {
		defer close(out)
		p.run(ctx, out)
	}()

	return out
}

func (p *Poller) run(ctx context.Context, out chan<- domain.Submission) {
	ctx = logger.WithFields(ctx, zap.String("subreddit", p.options.Subreddit))
	logger.Info(ctx, "streaming new submissions")

	bo := backoff.NewExponentialBackOff()
	if p.options.MaxBackoff > 0 {
		bo.InitialInterval = min(bo.InitialInterval, p.options.MaxBackoff)
		bo.MaxInterval = p.options.MaxBackoff
	}
	bo.MaxElapsedTime = 0
	bo.Reset()

	for {
		if err := p.limiter.Wait(ctx); err != nil {
			return
		}

		subs, err := p.client.NewSubmissions(ctx, p.options.Subreddit, p.options.Limit)
		if err != nil {
			if ctx.Err() != nil {
				return
			}

			delay := bo.NextBackOff()
			if d, ok := serrors.RetryAfter(err); ok && errors.Is(err, serrors.ErrRateLimited) {
				delay = d
			}
			logger.Warn(ctx, "could not poll new submissions; retrying",
				zap.Duration("delay", delay), zap.Error(err))
			if !sleep(ctx, delay) {
				return
			}

			continue
		}
		bo.Reset()

		if !p.emit(ctx, out, subs) {
			return
		}
	}
}

// emit sends the unseen submissions of a newest-first listing, oldest first.
func (p *Poller) emit(ctx context.Context, out chan<- domain.Submission, subs []domain.Submission) bool {
	fresh := 0
	for i := len(subs) - 1; i >= 0; i-- {
		if _, ok := p.seen.Get(subs[i].ID); ok {
			continue
		}
		p.seen.Add(subs[i].ID, struct{}{})
		fresh++

		select {
		case <-ctx.Done():
			return false
		case out <- subs[i]:
		}
	}

	if logger.IsDebug(ctx) {
		logger.Debug(ctx, "polled new submissions", zap.Int("received", len(subs)), zap.Int("new", fresh))
	}

	return true
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
