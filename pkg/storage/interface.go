// Package storage defines the persistence interfaces the bot relies on. The
// only persisted state is a ledger of threads the bot has commented on, which
// survives restarts and saves a comment-listing request per known thread.
//
//go:generate mockgen -package mockstorage -source=interface.go -destination=mock/mockstorage.go *
package storage

import (
	"context"
	"linkfixer/pkg/domain"
)

// CommentStorage records which submissions already carry a bot comment.
type CommentStorage interface {
	// PostedComment returns the recorded comment for the submission, or nil
	// when none has been recorded.
	PostedComment(ctx context.Context, id domain.SubmissionID) (*domain.PostedComment, error)
	// StorePostedComment records a comment. It returns false when the
	// submission was already recorded, in which case nothing is changed.
	StorePostedComment(ctx context.Context, comment domain.PostedComment) (bool, error)
}

// Storage is a CommentStorage with a lifecycle.
type Storage interface {
	CommentStorage

	// Close releases any resources held by the storage implementation (e.g. the
	// underlying connection pool). After Close, the instance should not be used.
	Close() error
}
