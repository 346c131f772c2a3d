package githubclt

import (
	"fmt"

	"github.com/google/go-github/v59/github"
)

// Merge methods accepted by the GitHub merge API.
const (
	MergeMethodMerge  = "merge"
	MergeMethodRebase = "rebase"
	MergeMethodSquash = "squash"
)

// MergeableStateClean is the mergeable_state value that GitHub reports when a
// pull request has no conflicts and all required checks passed.
const MergeableStateClean = "clean"

// Check run conclusion values reported by the GitHub checks API.
const (
	CheckConclusionFailure  = "failure"
	CheckConclusionTimedOut = "timed_out"
)

// Repository is a snapshot of the repository fields that depkeeper consumes.
type Repository struct {
	Owner         string
	Name          string
	DefaultBranch string
	Fork          bool
	Private       bool
	Archived      bool
	HasPushAccess bool
	ParentHTMLURL string
}

func (r *Repository) FullName() string {
	return fmt.Sprintf("%s/%s", r.Owner, r.Name)
}

// SafeName returns the repository name for log messages.
// Names of private repositories are masked.
func (r *Repository) SafeName() string {
	if r.Private {
		return "[PRIVATE]"
	}

	return r.FullName()
}

// PullRequest is an immutable snapshot of a pull request.
// A new snapshot is fetched on every poll, it is never mutated locally.
type PullRequest struct {
	Number         int
	Title          string
	Author         string
	State          string
	MergeableState string
	HeadSHA        string
	HeadBranch     string
}

// CheckRun is the result of a single CI check for a commit.
type CheckRun struct {
	Name       string
	Status     string
	Conclusion string
}

// Failed returns true if the check run concluded with a result that forbids
// merging.
// Only the failure and timed_out conclusions count as failed, other negative
// conclusions like cancelled or action_required do not.
func (c *CheckRun) Failed() bool {
	return c.Conclusion == CheckConclusionFailure ||
		c.Conclusion == CheckConclusionTimedOut
}

// MergeRequest describes how a pull request should be merged.
type MergeRequest struct {
	Method        string
	CommitTitle   string
	CommitMessage string
}

// MergeResult is the outcome of a merge API call that succeeded on the
// transport level.
// Merged is false when GitHub accepted the request but did not merge the pull
// request, e.g. because its state changed concurrently.
type MergeResult struct {
	Merged  bool
	SHA     string
	Message string
}

// UpstreamSync is the result of syncing a fork with its upstream repository.
type UpstreamSync struct {
	Message    string
	MergeType  string
	BaseBranch string
}

func repoFromAPI(repo *github.Repository) *Repository {
	result := Repository{
		Owner:         repo.GetOwner().GetLogin(),
		Name:          repo.GetName(),
		DefaultBranch: repo.GetDefaultBranch(),
		Fork:          repo.GetFork(),
		Private:       repo.GetPrivate(),
		Archived:      repo.GetArchived(),
		HasPushAccess: repo.GetPermissions()["push"],
		ParentHTMLURL: repo.GetParent().GetHTMLURL(),
	}

	return &result
}

func prFromAPI(pr *github.PullRequest) (*PullRequest, error) {
	head := pr.GetHead()
	if head == nil {
		return nil, fmt.Errorf("pull request %d object has an empty head", pr.GetNumber())
	}

	if head.GetSHA() == "" {
		return nil, fmt.Errorf("pull request %d object has an empty head sha", pr.GetNumber())
	}

	return &PullRequest{
		Number:         pr.GetNumber(),
		Title:          pr.GetTitle(),
		Author:         pr.GetUser().GetLogin(),
		State:          pr.GetState(),
		MergeableState: pr.GetMergeableState(),
		HeadSHA:        head.GetSHA(),
		HeadBranch:     head.GetRef(),
	}, nil
}

func checkRunFromAPI(run *github.CheckRun) *CheckRun {
	return &CheckRun{
		Name:       run.GetName(),
		Status:     run.GetStatus(),
		Conclusion: run.GetConclusion(),
	}
}
