package postgres

import (
	"context"
	"fmt"
	"linkfixer/pkg/domain"

	"github.com/doug-martin/goqu/v9"
)

const (
	postedCommentsTable = "posted_comments"
)

// StorePostedComment inserts the comment unless the submission is already
// recorded. The first record for a submission wins.
func (p *PgSQL) StorePostedComment(ctx context.Context, comment domain.PostedComment) (bool, error) {
	var row PgPostedComment
	row.FromDomain(comment)

	res, err := p.Builder.Insert(postedCommentsTable).
		Rows(row).
		OnConflict(goqu.DoNothing()).
		Executor().ExecContext(ctx)
	if err != nil {
		return false, fmt.Errorf("could not store posted comment into pg: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("could not read affected rows: %w", err)
	}

	return affected > 0, nil
}

// PostedComment returns the recorded comment for a submission, or nil.
func (p *PgSQL) PostedComment(ctx context.Context, id domain.SubmissionID) (*domain.PostedComment, error) {
	var row PgPostedComment
	found, err := p.Builder.From(postedCommentsTable).
		Where(goqu.I("submission_id").Eq(string(id))).
		ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch posted comment from pg: %w", err)
	}
	if !found {
		return nil, nil
	}

	c := row.ToDomain()

	return &c, nil
}
