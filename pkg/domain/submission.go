package domain

import "time"

// SubmissionID is the base36 identifier of a Reddit submission (without the
// "t3_" type prefix).
type SubmissionID string

// Fullname returns the thing name Reddit expects when addressing the
// submission, e.g. "t3_abc123".
func (id SubmissionID) Fullname() string { return "t3_" + string(id) }

// Submission is a user-created post. Comments are only populated after they
// have been loaded explicitly; listings do not include them.
type Submission struct {
	ID        SubmissionID `json:"id"`
	URL       string       `json:"url"`
	Permalink string       `json:"permalink"`
	Subreddit string       `json:"subreddit"`
	Title     string       `json:"title"`
	CreatedAt time.Time    `json:"createdAt"`

	Comments []Comment `json:"comments,omitempty"`
}

// Comment is a top-level comment on a submission.
type Comment struct {
	ID string `json:"id"`
	// Author is the display name; "[deleted]" for removed accounts.
	Author string `json:"author"`
	// AuthorID is the account fullname ("t2_..."); empty for removed accounts.
	AuthorID  string `json:"authorId"`
	Permalink string `json:"permalink"`
}

// Account is the identity the bot is logged in as.
type Account struct {
	// ID is the account fullname, e.g. "t2_1w72".
	ID   string `json:"id"`
	Name string `json:"name"`
}
