package maintain

import (
	"context"

	"go.uber.org/zap"

	"github.com/simplesurance/depkeeper/internal/githubclt"
)

// DryGithubClient is a github client that does not do any changes on github.
// All operations that could cause a change are simulated and always succeed.
// All other operations are forwarded to a wrapped GithubClient.
type DryGithubClient struct {
	clt    GithubClient
	logger *zap.Logger
}

func NewDryGithubClient(clt GithubClient, logger *zap.Logger) *DryGithubClient {
	return &DryGithubClient{
		clt:    clt,
		logger: logger.Named("dry_github_client"),
	}
}

func (c *DryGithubClient) ListRepositories(ctx context.Context, org string) githubclt.RepoIterator {
	return c.clt.ListRepositories(ctx, org)
}

func (c *DryGithubClient) ListPullRequests(ctx context.Context, owner, repo, state, sort, sortDirection string) githubclt.PRIterator {
	return c.clt.ListPullRequests(ctx, owner, repo, state, sort, sortDirection)
}

func (c *DryGithubClient) PullRequest(ctx context.Context, owner, repo string, number int) (*githubclt.PullRequest, error) {
	return c.clt.PullRequest(ctx, owner, repo, number)
}

func (c *DryGithubClient) CheckRuns(ctx context.Context, owner, repo, ref string) ([]*githubclt.CheckRun, error) {
	return c.clt.CheckRuns(ctx, owner, repo, ref)
}

func (c *DryGithubClient) Merge(context.Context, string, string, int, *githubclt.MergeRequest) (*githubclt.MergeResult, error) {
	c.logger.Info("simulated merging pull request, no merge executed on github")

	return &githubclt.MergeResult{
		Merged:  true,
		SHA:     "0000000000000000000000000000000000000000",
		Message: "simulated merge",
	}, nil
}

func (c *DryGithubClient) SyncFork(context.Context, string, string, string) (*githubclt.UpstreamSync, error) {
	c.logger.Info("simulated syncing fork with upstream, no sync executed on github")

	return &githubclt.UpstreamSync{
		Message:   "simulated fork sync",
		MergeType: "none",
	}, nil
}

func (c *DryGithubClient) EnableVulnerabilityAlerts(context.Context, string, string) error {
	c.logger.Info("simulated enabling vulnerability alerts, nothing changed on github")
	return nil
}

func (c *DryGithubClient) EnableAutomatedSecurityFixes(context.Context, string, string) error {
	c.logger.Info("simulated enabling automated security fixes, nothing changed on github")
	return nil
}
