package maintain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/simplesurance/depkeeper/internal/githubclt"
	"github.com/simplesurance/depkeeper/internal/logfields"
)

// Decision is the terminal outcome of a mergeability evaluation.
type Decision int8

const (
	// DecisionMergeable means the pull request can be merged now.
	DecisionMergeable Decision = iota
	// DecisionBlocked means the pull request must not be merged, a check
	// run of its head commit failed or timed out.
	DecisionBlocked
	// DecisionExpired means the pull request did not become mergeable
	// before the evaluation timeout elapsed.
	DecisionExpired
)

func (d Decision) String() string {
	switch d {
	case DecisionMergeable:
		return "mergeable"
	case DecisionBlocked:
		return "blocked"
	case DecisionExpired:
		return "expired"
	default:
		return fmt.Sprintf("unknown (%d)", d)
	}
}

// Evaluation is the result of evaluating the mergeability of one pull
// request.
// PR is the pull request snapshot of the last poll.
type Evaluation struct {
	Decision Decision
	Reason   string
	PR       *githubclt.PullRequest
}

// PullRequestReader provides the read calls that an evaluation needs.
type PullRequestReader interface {
	PullRequest(ctx context.Context, owner, repo string, number int) (*githubclt.PullRequest, error)
	CheckRuns(ctx context.Context, owner, repo, ref string) ([]*githubclt.CheckRun, error)
}

// Evaluator decides if a pull request is safe to merge right now, will not
// become safe (blocked) or the decision window expired.
//
// Per evaluated pull request it polls the current pull request snapshot and
// the check runs of its head commit until a terminal decision is reached:
//
// - a check run concluded with failure or timed_out: Blocked. This is an
// absolute veto, it takes priority over the mergeable state that GitHub
// reports,
//
// - GitHub reports the clean mergeable state: Mergeable,
//
// - the timeout elapsed: Expired.
//
// Any mergeable state other than clean counts as not mergeable yet, not as an
// error.
type Evaluator struct {
	clt          PullRequestReader
	clock        clock.Clock
	timeout      time.Duration
	pollInterval time.Duration
	logger       *zap.Logger
}

// NewEvaluator returns an evaluator that polls every pollInterval and gives
// up after timeout.
// pollInterval must be >0.
// A timeout smaller than the poll interval is allowed, the evaluation then
// expires no later than one poll interval after the timeout elapsed.
func NewEvaluator(clt PullRequestReader, timeout, pollInterval time.Duration) (*Evaluator, error) {
	if pollInterval <= 0 {
		return nil, fmt.Errorf("poll interval is %s, must be >0", pollInterval)
	}

	return &Evaluator{
		clt:          clt,
		clock:        clock.New(),
		timeout:      timeout,
		pollInterval: pollInterval,
		logger:       zap.L().Named("evaluator"),
	}, nil
}

// Evaluate polls the state of a pull request until it resolves to exactly one
// of the three terminal decisions.
// The only local state between polls is the start timestamp, every poll
// fetches a fresh snapshot.
// When a fetch call fails, a *TransientFetchError wrapping the cause is
// returned and the evaluation is aborted, it is not retried automatically.
// Cancellation of ctx takes effect at the next poll boundary, never while a
// request is in flight.
func (e *Evaluator) Evaluate(ctx context.Context, owner, repo string, prNumber int) (*Evaluation, error) {
	logger := e.logger.With(
		logfields.RepositoryOwner(owner),
		logfields.Repository(repo),
		logfields.PullRequest(prNumber),
	)

	start := e.clock.Now()

	for {
		pr, err := e.clt.PullRequest(ctx, owner, repo, prNumber)
		if err != nil {
			return nil, &TransientFetchError{Err: fmt.Errorf("fetching pull request failed: %w", err)}
		}

		runs, err := e.clt.CheckRuns(ctx, owner, repo, pr.HeadSHA)
		if err != nil {
			return nil, &TransientFetchError{Err: fmt.Errorf("fetching check runs for commit %s failed: %w", pr.HeadSHA, err)}
		}

		if failed := failedCheckRuns(runs); len(failed) > 0 {
			return &Evaluation{
				Decision: DecisionBlocked,
				Reason:   fmt.Sprintf("check runs concluded with failure or timed_out: %s", strings.Join(failed, ", ")),
				PR:       pr,
			}, nil
		}

		if pr.MergeableState == githubclt.MergeableStateClean {
			return &Evaluation{
				Decision: DecisionMergeable,
				PR:       pr,
			}, nil
		}

		if e.clock.Since(start) >= e.timeout {
			return &Evaluation{
				Decision: DecisionExpired,
				Reason: fmt.Sprintf(
					"pull request did not become mergeable within %s, last mergeable state: %q",
					e.timeout, pr.MergeableState,
				),
				PR: pr,
			}, nil
		}

		logger.Debug(
			"pull request is not mergeable yet, waiting",
			logfields.Event("pr_mergeability_poll_scheduled"),
			logfields.Commit(pr.HeadSHA),
			zap.String("github.mergeable_state", pr.MergeableState),
			zap.Duration("poll_interval", e.pollInterval),
		)

		timer := e.clock.Timer(e.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func failedCheckRuns(runs []*githubclt.CheckRun) []string {
	var result []string

	for _, run := range runs {
		if run.Failed() {
			result = append(result, run.Name)
		}
	}

	return result
}
