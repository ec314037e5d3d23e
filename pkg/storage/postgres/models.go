package postgres

import (
	"database/sql"
	"linkfixer/pkg/domain"
	"time"
)

type PgPostedComment struct {
	SubmissionID string         `db:"submission_id"`
	Subreddit    string         `db:"subreddit"`
	Slug         string         `db:"slug"`
	Permalink    sql.NullString `db:"permalink"`
	PostedAt     time.Time      `db:"posted_at"`
}

func (p *PgPostedComment) ToDomain() domain.PostedComment {
	return domain.PostedComment{
		SubmissionID: domain.SubmissionID(p.SubmissionID),
		Subreddit:    p.Subreddit,
		Slug:         p.Slug,
		Permalink:    p.Permalink.String,
		PostedAt:     p.PostedAt,
	}
}

func (p *PgPostedComment) FromDomain(c domain.PostedComment) {
	postedAt := c.PostedAt
	if postedAt.IsZero() {
		postedAt = time.Now().UTC()
	}

	*p = PgPostedComment{
		SubmissionID: string(c.SubmissionID),
		Subreddit:    c.Subreddit,
		Slug:         c.Slug,
		Permalink: sql.NullString{
			String: c.Permalink,
			Valid:  c.Permalink != "",
		},
		PostedAt: postedAt,
	}
}
