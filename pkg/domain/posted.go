package domain

import "time"

// PostedComment records that the bot commented on a submission.
type PostedComment struct {
	SubmissionID SubmissionID `json:"submissionId"`
	Subreddit    string       `json:"subreddit"`
	Slug         string       `json:"slug"`
	// Permalink of the posted comment; empty when the comment was found in
	// the thread rather than posted by this process.
	Permalink string    `json:"permalink"`
	PostedAt  time.Time `json:"postedAt"`
}
