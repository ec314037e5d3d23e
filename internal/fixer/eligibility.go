package fixer

import (
	"linkfixer/pkg/domain"
	"strings"
)

// Exclusions is the set of lowercase subreddit names the bot never comments in.
type Exclusions map[string]struct{}

// ParseExclusions builds an Exclusions set from a space separated list.
func ParseExclusions(list string) Exclusions {
	ex := make(Exclusions)
	for _, name := range strings.Fields(list) {
		ex[strings.ToLower(name)] = struct{}{}
	}

	return ex
}

// Contains reports whether subreddit is excluded, ignoring case.
func (e Exclusions) Contains(subreddit string) bool {
	_, ok := e[strings.ToLower(subreddit)]

	return ok
}

// Reason explains why a submission is not eligible.
type Reason string

const (
	ReasonNone          Reason = ""
	ReasonExcluded      Reason = "excluded"
	ReasonAlreadyPosted Reason = "already_posted"
)

// Verdict is the outcome of Eligible.
type Verdict struct {
	OK     bool
	Reason Reason
	// Comment is the bot's earlier comment when Reason is ReasonAlreadyPosted.
	Comment *domain.Comment
}

// Eligible decides whether the bot should comment on sub. sub.Comments must
// already be loaded.
func Eligible(sub domain.Submission, self domain.Account, excluded Exclusions) Verdict {
	if excluded.Contains(sub.Subreddit) {
		return Verdict{Reason: ReasonExcluded}
	}

	for i := range sub.Comments {
		// removed accounts have no id and never match
		if sub.Comments[i].AuthorID != "" && sub.Comments[i].AuthorID == self.ID {
			return Verdict{Reason: ReasonAlreadyPosted, Comment: &sub.Comments[i]}
		}
	}

	return Verdict{OK: true}
}
