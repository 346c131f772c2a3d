package maintain

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/simplesurance/depkeeper/internal/githubclt"
	"github.com/simplesurance/depkeeper/internal/logfields"
)

// Merger executes the merge of a pull request.
type Merger interface {
	Merge(ctx context.Context, owner, repo string, number int, req *githubclt.MergeRequest) (*githubclt.MergeResult, error)
}

// Executor merges pull requests that were classified as mergeable.
type Executor struct {
	clt    Merger
	logger *zap.Logger
}

func NewExecutor(clt Merger) *Executor {
	return &Executor{
		clt:    clt,
		logger: zap.L().Named("executor"),
	}
}

// Execute merges the pull request with the method and messages selected by
// policy.
// It must only be called for pull requests that the Evaluator classified as
// mergeable, with the snapshot of that evaluation.
//
// When the merge request fails on the transport or authorization level an
// error is returned. The merge is never retried automatically, retrying with
// a stale title or commit context could produce a duplicate or incorrect
// commit. The caller must re-evaluate the pull request before trying again.
// When GitHub accepted the request but did not merge, the returned
// MergeResult has Merged set to false.
func (ex *Executor) Execute(ctx context.Context, owner, repo string, pr *githubclt.PullRequest, policy *MergePolicy) (*githubclt.MergeResult, error) {
	req := newMergeRequest(pr.Title, policy)

	ex.logger.Debug(
		"executing merge",
		logfields.Event("pr_merge_started"),
		logfields.RepositoryOwner(owner),
		logfields.Repository(repo),
		logfields.PullRequest(pr.Number),
		logfields.MergeMethod(req.Method),
	)

	result, err := ex.clt.Merge(ctx, owner, repo, pr.Number, req)
	if err != nil {
		return nil, fmt.Errorf("merge request for pull request %d failed: %w", pr.Number, err)
	}

	return result, nil
}

// newMergeRequest builds the merge method, commit title and commit message
// for a pull request.
// When merges are counted as personal commits, the merge method is always
// squash and the commit message carries a co-author trailer. GitHub requires
// the trailer on its own line, separated from the message body by a blank
// line, to credit the author in its contribution accounting.
func newMergeRequest(prTitle string, policy *MergePolicy) *githubclt.MergeRequest {
	if policy.CountAsPersonal {
		return &githubclt.MergeRequest{
			Method:      githubclt.MergeMethodSquash,
			CommitTitle: "Squash Merge: " + prTitle,
			CommitMessage: fmt.Sprintf(
				"This merges Dependabot changes.\n\nCo-authored-by: %s <%s>",
				policy.AuthorName, policy.AuthorEmail,
			),
		}
	}

	return &githubclt.MergeRequest{
		Method:        policy.Method,
		CommitTitle:   prTitle,
		CommitMessage: "Merging Dependabot changes.",
	}
}
