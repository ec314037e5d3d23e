package fixer

import (
	"context"
	"errors"
	"fmt"
	"linkfixer/internal/config"
	"linkfixer/pkg/domain"
	"linkfixer/pkg/logger"
	"linkfixer/pkg/metrics"
	"linkfixer/pkg/reddit"
	"linkfixer/pkg/storage"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Outcomes of a unit of work, as counted by metrics.
const (
	OutcomePosted        = "posted"
	OutcomeExcluded      = string(ReasonExcluded)
	OutcomeAlreadyPosted = string(ReasonAlreadyPosted)
	OutcomeFailed        = "failed"
	OutcomeCancelled     = "cancelled"
	OutcomePanic         = "panic"
)

// Options configure the Dispatcher.
type Options struct {
	// Workers bounds the number of units of work in flight.
	Workers int
	// DrainTimeout is how long in-flight units may keep running once the
	// dispatch context is done before their own context is cancelled.
	DrainTimeout time.Duration
	// Exclusions lists subreddits the bot never comments in.
	Exclusions Exclusions
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		Workers:      cfg.Bot.Workers,
		DrainTimeout: cfg.Bot.DrainTimeout,
		Exclusions:   ParseExclusions(cfg.Bot.Exclude),
	}
}

// Dispatcher reads submissions, and for every Gfycat link starts a unit of
// work that checks the thread and posts the correction.
type Dispatcher struct {
	options Options
	client  reddit.Client
	ledger  storage.CommentStorage
	poster  *Poster
	self    domain.Account
	metrics *metrics.Metrics
}

// NewDispatcher creates a Dispatcher acting as self. A nil m records nothing.
func NewDispatcher(
	options Options,
	client reddit.Client,
	ledger storage.CommentStorage,
	poster *Poster,
	self domain.Account,
	m *metrics.Metrics) *Dispatcher {
	if options.Workers <= 0 {
		options.Workers = 1
	}
	if m == nil {
		m = metrics.Noop()
	}

	return &Dispatcher{
		options: options,
		client:  client,
		ledger:  ledger,
		poster:  poster,
		self:    self,
		metrics: m,
	}
}

// Run consumes feed until it is closed or ctx is done. It never waits for a
// unit of work to finish before reading the next submission, unless Workers
// units are already running. Before returning, Run waits for in-flight units;
// once ctx is done they get DrainTimeout before being cancelled.
func (d *Dispatcher) Run(ctx context.Context, feed <-chan domain.Submission) error {
	workCtx, cancelWork := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelWork()

	stopped := make(chan struct{})
	defer close(stopped)
	go d.cancelAfterDrain(ctx, stopped, cancelWork)

	var g errgroup.Group
	g.SetLimit(d.options.Workers)

	d.dispatch(ctx, workCtx, &g, feed)

	_ = g.Wait()
	logger.Info(ctx, "dispatcher stopped")

	return nil
}

func (d *Dispatcher) dispatch(ctx, workCtx context.Context, g *errgroup.Group, feed <-chan domain.Submission) {
	for {
		if ctx.Err() != nil {
			return
		}

		select {
		case <-ctx.Done():
			return
		case sub, ok := <-feed:
			if !ok {
				return
			}

			d.metrics.Submission(ctx, metrics.StageSeen)
			slug, matched := Match(sub.URL)
			if !matched {
				continue
			}
			d.metrics.Submission(ctx, metrics.StageMatched)

			g.Go(func() error {
				d.handle(workCtx, sub, slug)

				return nil
			})
		}
	}
}

// cancelAfterDrain cancels the units of work DrainTimeout after ctx is done,
// unless Run returned before that.
func (d *Dispatcher) cancelAfterDrain(ctx context.Context, stopped <-chan struct{}, cancelWork context.CancelFunc) {
	select {
	case <-stopped:
		return
	case <-ctx.Done():
	}

	logger.Info(ctx, "draining units of work", zap.Duration("timeout", d.options.DrainTimeout))

	t := time.NewTimer(d.options.DrainTimeout)
	defer t.Stop()

	select {
	case <-stopped:
	case <-t.C:
		logger.Warn(ctx, "drain timeout reached; cancelling units of work")
		cancelWork()
	}
}

// handle runs one unit of work. Errors and panics end here.
func (d *Dispatcher) handle(ctx context.Context, sub domain.Submission, slug string) {
	ctx = logger.WithFields(ctx,
		zap.String("unitID", uuid.NewString()),
		zap.String("submission", string(sub.ID)),
		zap.String("subreddit", sub.Subreddit),
		zap.String("slug", slug))

	defer func() {
		if r := recover(); r != nil {
			logger.Error(ctx, "unit of work panicked", zap.Any("panic", r), zap.Stack("stack"))
			d.metrics.Unit(ctx, OutcomePanic)
		}
	}()

	outcome, err := d.process(ctx, sub, slug)
	if err != nil {
		logger.Error(ctx, "unit of work failed", zap.Error(err))
	}
	d.metrics.Unit(ctx, outcome)
}

func (d *Dispatcher) process(ctx context.Context, sub domain.Submission, slug string) (string, error) {
	if ctx.Err() != nil {
		return OutcomeCancelled, nil
	}

	if d.options.Exclusions.Contains(sub.Subreddit) {
		logger.Debug(ctx, "subreddit is excluded")

		return OutcomeExcluded, nil
	}

	recorded, err := d.ledger.PostedComment(ctx, sub.ID)
	if err != nil {
		logger.Warn(ctx, "could not consult posted comments; checking the thread", zap.Error(err))
	}
	if err == nil && recorded != nil {
		logger.Info(ctx, "already posted in thread",
			zap.String("permalink", sub.Permalink), zap.String("comment", recorded.Permalink))

		return OutcomeAlreadyPosted, nil
	}

	comments, err := d.client.Comments(ctx, sub.ID)
	if err != nil {
		if ctx.Err() != nil {
			return OutcomeCancelled, nil
		}

		return OutcomeFailed, fmt.Errorf("could not load comments: %w", err)
	}
	sub.Comments = comments

	verdict := Eligible(sub, d.self, d.options.Exclusions)
	switch verdict.Reason {
	case ReasonNone:
	case ReasonExcluded:
		return OutcomeExcluded, nil
	case ReasonAlreadyPosted:
		logger.Info(ctx, "already posted in thread", zap.String("permalink", sub.Permalink))
		d.record(ctx, sub, slug, verdict.Comment.Permalink)

		return OutcomeAlreadyPosted, nil
	}

	permalink, err := d.poster.Post(ctx, sub, slug)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return OutcomeCancelled, nil
		}

		// the poster logged the failure already
		return Classify(err).String(), nil
	}

	d.record(ctx, sub, slug, permalink)

	return OutcomePosted, nil
}

func (d *Dispatcher) record(ctx context.Context, sub domain.Submission, slug, permalink string) {
	_, err := d.ledger.StorePostedComment(ctx, domain.PostedComment{
		SubmissionID: sub.ID,
		Subreddit:    sub.Subreddit,
		Slug:         slug,
		Permalink:    permalink,
		PostedAt:     time.Now().UTC(),
	})
	if err != nil {
		logger.Warn(ctx, "could not record posted comment", zap.Error(err))
	}
}
