package githubclt

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/go-github/v59/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/simplesurance/depkeeper/internal/dkerr"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	clt := &Client{
		restClt: github.NewClient(srv.Client()),
		logger:  zap.L(),
	}

	baseURL, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)
	clt.restClt.BaseURL = baseURL

	return clt
}

func TestPullRequestIsDecodedIntoTypedRecord(t *testing.T) {
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t).Named(t.Name())))

	clt := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/testman/repo/pulls/42", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"number": 42,
			"title": "Bump foo from 1.0.0 to 1.0.1",
			"state": "open",
			"mergeable_state": "clean",
			"user": {"login": "dependabot[bot]"},
			"head": {"sha": "abcdef123", "ref": "dependabot/foo-1.0.1"}
		}`))
	}))

	pr, err := clt.PullRequest(context.Background(), "testman", "repo", 42)
	require.NoError(t, err)

	assert.Equal(t, 42, pr.Number)
	assert.Equal(t, "Bump foo from 1.0.0 to 1.0.1", pr.Title)
	assert.Equal(t, "dependabot[bot]", pr.Author)
	assert.Equal(t, "open", pr.State)
	assert.Equal(t, MergeableStateClean, pr.MergeableState)
	assert.Equal(t, "abcdef123", pr.HeadSHA)
	assert.Equal(t, "dependabot/foo-1.0.1", pr.HeadBranch)
}

func TestPullRequestWithoutHeadShaFails(t *testing.T) {
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t).Named(t.Name())))

	clt := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"number": 3, "head": {"ref": "branch"}}`))
	}))

	pr, err := clt.PullRequest(context.Background(), "testman", "repo", 3)
	require.Error(t, err)
	assert.Nil(t, pr)
}

func TestServerErrorsAreRetryable(t *testing.T) {
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t).Named(t.Name())))

	clt := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := clt.PullRequest(context.Background(), "testman", "repo", 1)
	require.Error(t, err)

	var retryableErr *dkerr.RetryableError
	assert.ErrorAs(t, err, &retryableErr)
}

func TestClientErrorsAreNotRetryable(t *testing.T) {
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t).Named(t.Name())))

	clt := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := clt.PullRequest(context.Background(), "testman", "repo", 1)
	require.Error(t, err)

	var retryableErr *dkerr.RetryableError
	assert.False(t, errors.As(err, &retryableErr))
}

func TestMergeResultNotMerged(t *testing.T) {
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t).Named(t.Name())))

	clt := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"merged": false, "message": "Base branch was modified"}`))
	}))

	result, err := clt.Merge(context.Background(), "testman", "repo", 7, &MergeRequest{
		Method:        MergeMethodSquash,
		CommitTitle:   "title",
		CommitMessage: "message",
	})
	require.NoError(t, err)

	assert.False(t, result.Merged)
	assert.Equal(t, "Base branch was modified", result.Message)
}

func TestCheckRunFailed(t *testing.T) {
	testcases := []struct {
		conclusion string
		failed     bool
	}{
		{conclusion: CheckConclusionFailure, failed: true},
		{conclusion: CheckConclusionTimedOut, failed: true},
		{conclusion: "success", failed: false},
		{conclusion: "neutral", failed: false},
		{conclusion: "cancelled", failed: false},
		{conclusion: "action_required", failed: false},
		{conclusion: "", failed: false},
	}

	for _, tc := range testcases {
		run := CheckRun{Name: "check", Conclusion: tc.conclusion}
		assert.Equalf(t, tc.failed, run.Failed(), "conclusion: %q", tc.conclusion)
	}
}
