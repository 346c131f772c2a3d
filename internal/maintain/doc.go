// Package maintain automates maintenance of GitHub repositories.
//
// The Maintainer runs three independent passes over the set of repositories
// that the configured API token can push to:
//
// - Fork Sync: forks are synced with their upstream repository,
//
// - Dependabot Enablement: vulnerability alerts and automated security fixes
// are enabled,
//
// - Dependabot PR Merge: open pull requests authored by Dependabot are merged
// when they are mergeable.
//
// Whether a pull request is mergeable is decided by the Evaluator. It polls
// the pull request snapshot and the check runs of its head commit until one
// of three terminal outcomes is reached: the pull request is mergeable, it is
// blocked by failing checks, or the decision window expired. A check run that
// concluded with failure or timed_out always blocks the merge, also when
// GitHub reports the pull request as mergeable.
//
// Merges are executed by the Executor. It builds the merge method, commit
// title and commit message from the configured MergePolicy. When merges are
// counted as personal commits, the pull request is squash-merged and a
// co-author trailer crediting the configured author is appended to the commit
// message.
//
// The passes run strictly sequential, one repository and one pull request at
// a time. The GitHub API is the shared, rate-limited resource, concurrent
// evaluation would risk exhausting the rate limit without a compensating
// benefit. Failures are isolated per pull request, a failure never aborts the
// processing of the remaining pull requests or repositories.
package maintain
