package maintain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/simplesurance/depkeeper/internal/githubclt"
	"github.com/simplesurance/depkeeper/internal/logfields"
)

//go:generate mockgen -source maintain.go -destination mocks/githubclient.go -package mocks

const loggerName = "maintainer"

// BotUser is the account name of the automated dependency-update bot whose
// pull requests are merged.
const BotUser = "dependabot[bot]"

// GithubClient is the GitHub API surface that the Maintainer consumes.
type GithubClient interface {
	ListRepositories(ctx context.Context, org string) githubclt.RepoIterator
	ListPullRequests(ctx context.Context, owner, repo, state, sort, sortDirection string) githubclt.PRIterator
	PullRequest(ctx context.Context, owner, repo string, number int) (*githubclt.PullRequest, error)
	CheckRuns(ctx context.Context, owner, repo, ref string) ([]*githubclt.CheckRun, error)
	Merge(ctx context.Context, owner, repo string, number int, req *githubclt.MergeRequest) (*githubclt.MergeResult, error)
	SyncFork(ctx context.Context, owner, repo, branch string) (*githubclt.UpstreamSync, error)
	EnableVulnerabilityAlerts(ctx context.Context, owner, repo string) error
	EnableAutomatedSecurityFixes(ctx context.Context, owner, repo string) error
}

// RunConfig are the process-wide settings of a maintenance run.
type RunConfig struct {
	// Org selects the organization whose repositories are processed.
	// If empty, the repositories of the authenticated user are processed.
	Org string

	SyncForks          bool
	EnableDependabot   bool
	MergeDependabotPRs bool

	MergeTimeout time.Duration
	PollInterval time.Duration
}

// Maintainer runs the maintenance passes over the selected repositories.
type Maintainer struct {
	clt      GithubClient
	retryer  *Retryer
	selector *RepoSelector
	filter   *RepoFilterQuery
	policy   *MergePolicy

	evaluator *Evaluator
	executor  *Executor

	runCfg RunConfig
	logger *zap.Logger
}

func NewMaintainer(
	clt GithubClient,
	retryer *Retryer,
	selector *RepoSelector,
	filter *RepoFilterQuery,
	policy *MergePolicy,
	runCfg RunConfig,
) (*Maintainer, error) {
	evaluator, err := NewEvaluator(clt, runCfg.MergeTimeout, runCfg.PollInterval)
	if err != nil {
		return nil, fmt.Errorf("creating mergeability evaluator failed: %w", err)
	}

	return &Maintainer{
		clt:       clt,
		retryer:   retryer,
		selector:  selector,
		filter:    filter,
		policy:    policy,
		evaluator: evaluator,
		executor:  NewExecutor(clt),
		runCfg:    runCfg,
		logger:    zap.L().Named(loggerName),
	}, nil
}

// Run executes the enabled maintenance passes sequentially over all selected
// repositories.
// Failures processing a single repository or pull request are logged and
// never abort the run, the run always reaches a defined completion state in
// which every repository was attempted.
// Cancelling ctx stops the run at the next repository or poll boundary.
func (m *Maintainer) Run(ctx context.Context) error {
	stat := runStat{StartTime: time.Now()}

	repos, err := m.listRepositories(ctx)
	if err != nil {
		return fmt.Errorf("listing repositories failed: %w", err)
	}

	stat.Repositories = uint(len(repos))
	m.logger.Info(
		"repositories discovered",
		logfields.Event("repositories_discovered"),
		zap.Int("repository_count", len(repos)),
	)

	if m.runCfg.SyncForks {
		m.syncForkPass(ctx, repos, &stat)
	}

	if m.runCfg.EnableDependabot {
		m.dependabotPass(ctx, repos, &stat)
	}

	if m.runCfg.MergeDependabotPRs {
		m.mergePass(ctx, repos, &stat)
	}

	stat.EndTime = time.Now()
	m.logger.Info(
		"run finished",
		append(stat.LogFields(), logfields.Event("run_finished"))...,
	)

	return ctx.Err()
}

// listRepositories returns the repositories to process: those where the
// token has push access, that pass the include list and that match the
// repository filter query.
func (m *Maintainer) listRepositories(ctx context.Context) ([]*githubclt.Repository, error) {
	var result []*githubclt.Repository

	it := m.clt.ListRepositories(ctx, m.runCfg.Org)
	for {
		repo, err := it.Next()
		if err != nil {
			return nil, err
		}

		if repo == nil {
			break
		}

		if !repo.HasPushAccess {
			continue
		}

		if !m.selector.Included(repo.FullName()) {
			continue
		}

		match, err := m.filter.Match(repo)
		if err != nil {
			m.logger.Warn(
				"skipping repository, repository filter query failed",
				logfields.Event("repo_filter_query_failed"),
				logfields.Repository(repo.SafeName()),
				zap.Error(err),
			)

			continue
		}

		if !match {
			m.logger.Debug(
				"skipping repository, repository filter query did not match",
				logfields.Event("repo_filter_query_no_match"),
				logfields.Repository(repo.SafeName()),
			)

			continue
		}

		result = append(result, repo)
	}

	return result, nil
}

func (m *Maintainer) syncForkPass(ctx context.Context, repos []*githubclt.Repository, stat *runStat) {
	m.logger.Info("fork sync pass started", logfields.Event("fork_sync_pass_started"))

	for _, repo := range repos {
		if ctx.Err() != nil {
			return
		}

		logger := m.logger.With(logfields.Repository(repo.SafeName()))

		if m.selector.Excluded(repo.FullName()) {
			logger.Debug("skipping fork sync, repository is excluded")
			continue
		}

		if !repo.Fork {
			continue
		}

		logger = logger.With(
			logfields.Branch(repo.DefaultBranch),
			zap.String("github.parent_repository", repo.ParentHTMLURL),
		)

		var sync *githubclt.UpstreamSync
		err := m.retryer.Run(ctx, func(ctx context.Context) error {
			var err error
			sync, err = m.clt.SyncFork(ctx, repo.Owner, repo.Name, repo.DefaultBranch)
			return err
		}, []zap.Field{logfields.Repository(repo.SafeName())})
		if err != nil {
			logger.Warn(
				"syncing fork with upstream failed",
				logfields.Event("fork_sync_failed"),
				zap.Error(err),
			)
			stat.Failures++

			continue
		}

		stat.ForksSynced++
		logger.Info(
			"fork synced with upstream",
			logfields.Event("fork_synced"),
			zap.String("github.merge_type", sync.MergeType),
		)
	}
}

func (m *Maintainer) dependabotPass(ctx context.Context, repos []*githubclt.Repository, stat *runStat) {
	m.logger.Info("dependabot enablement pass started", logfields.Event("dependabot_pass_started"))

	for _, repo := range repos {
		if ctx.Err() != nil {
			return
		}

		logger := m.logger.With(logfields.Repository(repo.SafeName()))

		if m.selector.Excluded(repo.FullName()) {
			logger.Debug("skipping dependabot enablement, repository is excluded")
			continue
		}

		logF := []zap.Field{logfields.Repository(repo.SafeName())}

		err := m.retryer.Run(ctx, func(ctx context.Context) error {
			return m.clt.EnableVulnerabilityAlerts(ctx, repo.Owner, repo.Name)
		}, logF)
		if err != nil {
			logger.Warn(
				"enabling vulnerability alerts failed",
				logfields.Event("vulnerability_alerts_enable_failed"),
				zap.Error(err),
			)
			stat.Failures++
		} else {
			logger.Info(
				"vulnerability alerts enabled",
				logfields.Event("vulnerability_alerts_enabled"),
			)
		}

		err = m.retryer.Run(ctx, func(ctx context.Context) error {
			return m.clt.EnableAutomatedSecurityFixes(ctx, repo.Owner, repo.Name)
		}, logF)
		if err != nil {
			logger.Warn(
				"enabling automated security fixes failed",
				logfields.Event("security_fixes_enable_failed"),
				zap.Error(err),
			)
			stat.Failures++

			continue
		}

		logger.Info(
			"automated security fixes enabled",
			logfields.Event("security_fixes_enabled"),
		)
	}
}

func (m *Maintainer) mergePass(ctx context.Context, repos []*githubclt.Repository, stat *runStat) {
	m.logger.Info("dependabot merge pass started", logfields.Event("merge_pass_started"))

	for _, repo := range repos {
		if ctx.Err() != nil {
			return
		}

		logger := m.logger.With(logfields.Repository(repo.SafeName()))

		if m.selector.Excluded(repo.FullName()) {
			logger.Debug("skipping dependabot merges, repository is excluded")
			continue
		}

		prs, err := m.dependabotPRs(ctx, repo)
		if err != nil {
			logger.Warn(
				"listing pull requests failed, skipping repository",
				logfields.Event("pr_listing_failed"),
				zap.Error(err),
			)
			stat.Failures++

			continue
		}

		metrics.ProcessedRepositoryInc()

		if len(prs) == 0 {
			logger.Debug("no open dependabot pull requests")
			continue
		}

		for _, pr := range prs {
			if ctx.Err() != nil {
				return
			}

			stat.PRsSeen++
			m.processPR(ctx, repo, pr, stat)
		}
	}
}

// dependabotPRs returns the open pull requests of the repository that were
// authored by the dependency-update bot, in creation order.
func (m *Maintainer) dependabotPRs(ctx context.Context, repo *githubclt.Repository) ([]*githubclt.PullRequest, error) {
	var result []*githubclt.PullRequest

	it := m.clt.ListPullRequests(ctx, repo.Owner, repo.Name, "open", "created", "asc")
	for {
		pr, err := it.Next()
		if err != nil {
			return nil, err
		}

		if pr == nil {
			return result, nil
		}

		if pr.Author != BotUser {
			continue
		}

		result = append(result, pr)
	}
}

// processPR evaluates the mergeability of a single pull request and merges it
// when it is mergeable.
// All outcomes are logged individually, failures are recorded and never
// propagated, the next pull request is processed regardless.
func (m *Maintainer) processPR(ctx context.Context, repo *githubclt.Repository, pr *githubclt.PullRequest, stat *runStat) {
	logger := m.logger.With(
		logfields.Repository(repo.SafeName()),
		logfields.PullRequest(pr.Number),
		zap.String("github.pull_request_title", pr.Title),
	)

	logger.Info("dependabot pull request found", logfields.Event("pr_found"))

	evaluation, err := m.evaluator.Evaluate(ctx, repo.Owner, repo.Name, pr.Number)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return
		}

		var fetchErr *TransientFetchError
		if errors.As(err, &fetchErr) {
			logger.Warn(
				"evaluating mergeability failed, skipping pull request",
				logfields.Event("pr_evaluation_failed"),
				zap.Error(err),
			)
			stat.Failures++

			return
		}

		logger.Warn(
			"evaluating mergeability failed with unexpected error, skipping pull request",
			logfields.Event("pr_evaluation_failed"),
			zap.Error(err),
		)
		stat.Failures++

		return
	}

	metrics.EvaluationInc(repo.SafeName(), evaluation.Decision)

	switch evaluation.Decision {
	case DecisionBlocked:
		logger.Info(
			"pull request is blocked, skipping merge",
			logfields.Event("pr_blocked"),
			logfields.Decision(evaluation.Decision.String()),
			zap.String("reason", evaluation.Reason),
		)
		stat.Blocked++

	case DecisionExpired:
		logger.Info(
			"gave up waiting for pull request to become mergeable",
			logfields.Event("pr_evaluation_expired"),
			logfields.Decision(evaluation.Decision.String()),
			zap.String("reason", evaluation.Reason),
		)
		stat.Expired++

	case DecisionMergeable:
		m.mergePR(ctx, repo, evaluation.PR, logger, stat)
	}
}

func (m *Maintainer) mergePR(ctx context.Context, repo *githubclt.Repository, pr *githubclt.PullRequest, logger *zap.Logger, stat *runStat) {
	result, err := m.executor.Execute(ctx, repo.Owner, repo.Name, pr, m.policy)
	if err != nil {
		logger.Warn(
			"merging pull request failed",
			logfields.Event("pr_merge_failed"),
			zap.Error(err),
		)
		metrics.MergeInc(repo.SafeName(), outcomeLabelFailedVal)
		stat.Failures++

		return
	}

	if !result.Merged {
		logger.Warn(
			"github accepted the merge request but did not merge the pull request",
			logfields.Event("pr_not_merged"),
			zap.String("github.message", result.Message),
		)
		metrics.MergeInc(repo.SafeName(), outcomeLabelNotMergedVal)
		stat.NotMerged++

		return
	}

	logger.Info(
		"pull request merged",
		logfields.Event("pr_merged"),
		logfields.Commit(result.SHA),
	)
	metrics.MergeInc(repo.SafeName(), outcomeLabelMergedVal)
	stat.Merged++
}

// Stop aborts pending retries.
// It does not wait for a running Run invocation to terminate.
func (m *Maintainer) Stop() {
	m.logger.Debug("maintainer terminating")
	m.retryer.Stop()
}
