package maintain

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/simplesurance/depkeeper/internal/githubclt"
	"github.com/simplesurance/depkeeper/internal/maintain/mocks"
)

func TestExecutePersonalPolicyForcesSquashWithCoAuthorTrailer(t *testing.T) {
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t).Named(t.Name())))

	mockctrl := gomock.NewController(t)
	clt := mocks.NewMockGithubClient(mockctrl)

	policy := &MergePolicy{
		Method:          githubclt.MergeMethodMerge,
		CountAsPersonal: true,
		AuthorName:      "Test Man",
		AuthorEmail:     "testman@example.com",
	}

	pr := prSnapshot(42, githubclt.MergeableStateClean)

	var gotReq *githubclt.MergeRequest
	clt.EXPECT().
		Merge(gomock.Any(), "testman", "repo", 42, gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, _ int, req *githubclt.MergeRequest) (*githubclt.MergeResult, error) {
			gotReq = req
			return &githubclt.MergeResult{Merged: true, SHA: "fffe123"}, nil
		})

	executor := NewExecutor(clt)

	result, err := executor.Execute(context.Background(), "testman", "repo", pr, policy)
	require.NoError(t, err)
	assert.True(t, result.Merged)

	require.NotNil(t, gotReq)
	assert.Equal(t, githubclt.MergeMethodSquash, gotReq.Method)
	assert.Equal(t, "Squash Merge: Bump foo from 1.0.0 to 1.0.1", gotReq.CommitTitle)
	assert.Equal(
		t,
		"This merges Dependabot changes.\n\nCo-authored-by: Test Man <testman@example.com>",
		gotReq.CommitMessage,
	)

	// GitHub only credits the co-author when the trailer is separated
	// from the message body by a blank line
	assert.True(t, strings.Contains(gotReq.CommitMessage, "\n\nCo-authored-by:"))
}

func TestExecuteNonPersonalPolicyUsesConfiguredMethod(t *testing.T) {
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t).Named(t.Name())))

	testcases := []string{
		githubclt.MergeMethodMerge,
		githubclt.MergeMethodRebase,
		githubclt.MergeMethodSquash,
	}

	for _, method := range testcases {
		t.Run(method, func(t *testing.T) {
			mockctrl := gomock.NewController(t)
			clt := mocks.NewMockGithubClient(mockctrl)

			policy := &MergePolicy{Method: method}
			pr := prSnapshot(7, githubclt.MergeableStateClean)

			var gotReq *githubclt.MergeRequest
			clt.EXPECT().
				Merge(gomock.Any(), "testman", "repo", 7, gomock.Any()).
				DoAndReturn(func(_ context.Context, _, _ string, _ int, req *githubclt.MergeRequest) (*githubclt.MergeResult, error) {
					gotReq = req
					return &githubclt.MergeResult{Merged: true}, nil
				})

			executor := NewExecutor(clt)

			_, err := executor.Execute(context.Background(), "testman", "repo", pr, policy)
			require.NoError(t, err)

			require.NotNil(t, gotReq)
			assert.Equal(t, method, gotReq.Method)
			assert.Equal(t, pr.Title, gotReq.CommitTitle)
			assert.Equal(t, "Merging Dependabot changes.", gotReq.CommitMessage)
			assert.NotContains(t, gotReq.CommitMessage, "Co-authored-by")
		})
	}
}

func TestExecuteReturnsNotMergedResult(t *testing.T) {
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t).Named(t.Name())))

	mockctrl := gomock.NewController(t)
	clt := mocks.NewMockGithubClient(mockctrl)

	clt.EXPECT().
		Merge(gomock.Any(), "testman", "repo", 3, gomock.Any()).
		Return(&githubclt.MergeResult{Merged: false, Message: "Base branch was modified"}, nil)

	executor := NewExecutor(clt)

	result, err := executor.Execute(
		context.Background(), "testman", "repo",
		prSnapshot(3, githubclt.MergeableStateClean),
		&MergePolicy{Method: githubclt.MergeMethodMerge},
	)
	require.NoError(t, err)

	assert.False(t, result.Merged)
	assert.Equal(t, "Base branch was modified", result.Message)
}

func TestExecuteWrapsMergeError(t *testing.T) {
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t).Named(t.Name())))

	mergeErr := errors.New("merge is forbidden")

	mockctrl := gomock.NewController(t)
	clt := mocks.NewMockGithubClient(mockctrl)

	clt.EXPECT().
		Merge(gomock.Any(), "testman", "repo", 3, gomock.Any()).
		Return(nil, mergeErr)

	executor := NewExecutor(clt)

	result, err := executor.Execute(
		context.Background(), "testman", "repo",
		prSnapshot(3, githubclt.MergeableStateClean),
		&MergePolicy{Method: githubclt.MergeMethodMerge},
	)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, mergeErr)
}
