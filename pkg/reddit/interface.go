// Package reddit defines the interface the bot uses to read the submission
// feed and to comment on threads. Implementations report failures as
// serrors kinds so callers can decide between retrying and giving up:
//
//   - serrors.ErrRateLimited, usually with serrors.RetryAfter set
//   - serrors.ErrForbidden
//   - serrors.ErrUnavailable for network failures
//   - serrors.ErrGone when the thread can never accept a comment
//   - serrors.ErrAPI for any other API failure
package reddit

import (
	"context"
	"linkfixer/pkg/domain"
)

// AllSubreddits is the feed scope covering every subreddit.
const AllSubreddits = "all"

// Client is the abstraction for the Reddit API. Implementations must be safe
// for concurrent use.
//
//go:generate mockgen -package mockreddit -source=interface.go -destination=mock/mockreddit.go *
type Client interface {
	// Me returns the account the client is authenticated as.
	Me(ctx context.Context) (domain.Account, error)
	// NewSubmissions returns up to limit of the newest submissions in the
	// subreddit (or AllSubreddits), newest first.
	NewSubmissions(ctx context.Context, subreddit string, limit int) ([]domain.Submission, error)
	// Comments returns the top-level comments of a submission.
	Comments(ctx context.Context, id domain.SubmissionID) ([]domain.Comment, error)
	// Reply posts a comment on the submission and returns the comment permalink.
	Reply(ctx context.Context, id domain.SubmissionID, body string) (string, error)
}
