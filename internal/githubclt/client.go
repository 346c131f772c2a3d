// Package githubclt provides a github API client.
// GitHub responses are decoded into the typed records defined in this package
// at the API boundary, callers never see raw API objects.
package githubclt

import (
	"context"
	"net/http"
	"time"

	"github.com/google/go-github/v59/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/simplesurance/depkeeper/internal/dkerr"
	"github.com/simplesurance/depkeeper/internal/logfields"
)

const DefaultHTTPClientTimeout = time.Minute

const loggerName = "github_client"

// New returns a new github api client.
func New(oauthAPItoken string) *Client {
	httpClient := newHTTPClient(oauthAPItoken)
	return &Client{
		restClt: github.NewClient(httpClient),
		logger:  zap.L().Named(loggerName),
	}
}

func newHTTPClient(apiToken string) *http.Client {
	if apiToken == "" {
		return &http.Client{
			Timeout: DefaultHTTPClientTimeout,
		}
	}

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: apiToken},
	)

	tc := oauth2.NewClient(context.Background(), ts)
	tc.Timeout = DefaultHTTPClientTimeout

	return tc
}

// Client is a github API client.
// All methods return a dkerr.RetryableError when an operation can be retried.
// This can be e.g. the case when the API ratelimit is exceeded.
type Client struct {
	restClt *github.Client
	logger  *zap.Logger
}

// PullRequest fetches the current snapshot of a pull request.
func (clt *Client) PullRequest(ctx context.Context, owner, repo string, number int) (*PullRequest, error) {
	pr, _, err := clt.restClt.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return nil, clt.wrapRetryableErrors(err)
	}

	return prFromAPI(pr)
}

// CheckRuns returns all check runs for the given commit.
func (clt *Client) CheckRuns(ctx context.Context, owner, repo, ref string) ([]*CheckRun, error) {
	var result []*CheckRun

	opts := github.ListCheckRunsOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}

	for {
		runs, resp, err := clt.restClt.Checks.ListCheckRunsForRef(ctx, owner, repo, ref, &opts)
		if err != nil {
			return nil, clt.wrapRetryableErrors(err)
		}

		for _, run := range runs.CheckRuns {
			result = append(result, checkRunFromAPI(run))
		}

		if resp.NextPage == 0 {
			return result, nil
		}

		opts.Page = resp.NextPage
	}
}

// Merge executes the merge of a pull request with the method, commit title
// and commit message of req.
// If the request succeeds but GitHub did not merge the pull request, the
// returned MergeResult has Merged set to false and no error is returned.
func (clt *Client) Merge(ctx context.Context, owner, repo string, number int, req *MergeRequest) (*MergeResult, error) {
	result, _, err := clt.restClt.PullRequests.Merge(
		ctx,
		owner,
		repo,
		number,
		req.CommitMessage,
		&github.PullRequestOptions{
			CommitTitle: req.CommitTitle,
			MergeMethod: req.Method,
		},
	)
	if err != nil {
		return nil, clt.wrapRetryableErrors(err)
	}

	return &MergeResult{
		Merged:  result.GetMerged(),
		SHA:     result.GetSHA(),
		Message: result.GetMessage(),
	}, nil
}

// SyncFork merges upstream changes of the given branch into the fork.
func (clt *Client) SyncFork(ctx context.Context, owner, repo, branch string) (*UpstreamSync, error) {
	result, _, err := clt.restClt.Repositories.MergeUpstream(
		ctx,
		owner,
		repo,
		&github.RepoMergeUpstreamRequest{Branch: &branch},
	)
	if err != nil {
		return nil, clt.wrapRetryableErrors(err)
	}

	return &UpstreamSync{
		Message:    result.GetMessage(),
		MergeType:  result.GetMergeType(),
		BaseBranch: result.GetBaseBranch(),
	}, nil
}

// EnableVulnerabilityAlerts enables Dependabot vulnerability alerts for a
// repository.
func (clt *Client) EnableVulnerabilityAlerts(ctx context.Context, owner, repo string) error {
	_, err := clt.restClt.Repositories.EnableVulnerabilityAlerts(ctx, owner, repo)
	return clt.wrapRetryableErrors(err)
}

// EnableAutomatedSecurityFixes enables Dependabot automated security fixes
// for a repository.
func (clt *Client) EnableAutomatedSecurityFixes(ctx context.Context, owner, repo string) error {
	_, err := clt.restClt.Repositories.EnableAutomatedSecurityFixes(ctx, owner, repo)
	return clt.wrapRetryableErrors(err)
}

type PRIterator interface {
	Next() (*PullRequest, error)
}

type PRIter struct {
	clt *Client

	ctx   context.Context
	owner string
	repo  string

	filterState   string
	sortOrder     string
	sortDirection string

	unseen []*PullRequest

	nextPage int
	finished bool
}

// Next returns the next pull request.
// When the last result was returned a nil PullRequest is returned.
func (it *PRIter) Next() (*PullRequest, error) {
	if len(it.unseen) > 0 {
		result := it.unseen[0]
		it.unseen = it.unseen[1:]

		return result, nil
	}

	if it.finished {
		return nil, nil
	}

	prs, resp, err := it.clt.restClt.PullRequests.List(it.ctx, it.owner, it.repo, &github.PullRequestListOptions{
		State:     it.filterState,
		Sort:      it.sortOrder,
		Direction: it.sortDirection,
		ListOptions: github.ListOptions{
			Page:    it.nextPage,
			PerPage: 100,
		},
	})
	if err != nil {
		return nil, it.clt.wrapRetryableErrors(err)
	}

	if resp.NextPage == 0 || len(prs) == 0 {
		it.finished = true
	} else {
		it.nextPage = resp.NextPage
	}

	for _, pr := range prs {
		typed, err := prFromAPI(pr)
		if err != nil {
			return nil, err
		}

		it.unseen = append(it.unseen, typed)
	}

	return it.Next()
}

// ListPullRequests returns an iterator for receiving all pull requests.
// The parameters state, sort, sortDirection expect the same values than their
// pendants in the struct github.PullRequestListOptions.
func (clt *Client) ListPullRequests(ctx context.Context, owner, repo, state, sort, sortDirection string) PRIterator { // interface is returned to make the method mockable
	return &PRIter{
		clt:           clt,
		ctx:           ctx,
		owner:         owner,
		repo:          repo,
		filterState:   state,
		sortOrder:     sort,
		sortDirection: sortDirection,
		nextPage:      1,
	}
}

type RepoIterator interface {
	Next() (*Repository, error)
}

type RepoIter struct {
	clt *Client

	ctx context.Context
	org string

	unseen []*Repository

	nextPage int
	finished bool
}

// Next returns the next repository.
// When the last result was returned a nil Repository is returned.
func (it *RepoIter) Next() (*Repository, error) {
	if len(it.unseen) > 0 {
		result := it.unseen[0]
		it.unseen = it.unseen[1:]

		return result, nil
	}

	if it.finished {
		return nil, nil
	}

	repos, resp, err := it.fetchPage()
	if err != nil {
		return nil, it.clt.wrapRetryableErrors(err)
	}

	if resp.NextPage == 0 || len(repos) == 0 {
		it.finished = true
	} else {
		it.nextPage = resp.NextPage
	}

	for _, repo := range repos {
		it.unseen = append(it.unseen, repoFromAPI(repo))
	}

	return it.Next()
}

func (it *RepoIter) fetchPage() ([]*github.Repository, *github.Response, error) {
	listOpts := github.ListOptions{
		Page:    it.nextPage,
		PerPage: 100,
	}

	if it.org == "" {
		return it.clt.restClt.Repositories.ListByAuthenticatedUser(
			it.ctx,
			&github.RepositoryListByAuthenticatedUserOptions{ListOptions: listOpts},
		)
	}

	return it.clt.restClt.Repositories.ListByOrg(
		it.ctx,
		it.org,
		&github.RepositoryListByOrgOptions{
			Type:        "all",
			ListOptions: listOpts,
		},
	)
}

// ListRepositories returns an iterator for receiving all repositories that
// the API token can access.
// If org is empty, the repositories of the authenticated user are listed,
// otherwise the repositories of the organization.
func (clt *Client) ListRepositories(ctx context.Context, org string) RepoIterator {
	return &RepoIter{
		clt:      clt,
		ctx:      ctx,
		org:      org,
		nextPage: 1,
	}
}

func (clt *Client) wrapRetryableErrors(err error) error {
	switch v := err.(type) {
	case *github.RateLimitError:
		clt.logger.Info(
			"rate limit exceeded",
			logfields.Event("github_api_rate_limit_exceeded"),
			zap.Int("github_api_rate_limit", v.Rate.Limit),
			zap.Time("github_api_rate_limit_reset_time", v.Rate.Reset.Time),
		)

		return dkerr.NewRetryableError(err, v.Rate.Reset.Time)

	case *github.ErrorResponse:
		if v.Response.StatusCode >= 500 && v.Response.StatusCode < 600 {
			return dkerr.NewRetryableAnytimeError(err)
		}
	}

	return err
}
