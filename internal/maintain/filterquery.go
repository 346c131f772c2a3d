package maintain

import (
	"fmt"

	"github.com/itchyny/gojq"

	"github.com/simplesurance/depkeeper/internal/githubclt"
)

// RepoFilterQuery is an optional jq expression that refines the set of
// processed repositories.
// It is evaluated per repository against an object with the fields owner,
// name, full_name, default_branch, fork, private and archived.
// A repository matches when the expression evaluates to true.
type RepoFilterQuery struct {
	query *gojq.Query
	raw   string
}

// NewRepoFilterQuery parses a jq filter expression.
// An empty expression returns a nil query, which matches every repository.
func NewRepoFilterQuery(jqQuery string) (*RepoFilterQuery, error) {
	if jqQuery == "" {
		return nil, nil
	}

	query, err := gojq.Parse(jqQuery)
	if err != nil {
		return nil, fmt.Errorf("parsing jq expression %q failed: %w", jqQuery, err)
	}

	return &RepoFilterQuery{
		query: query,
		raw:   jqQuery,
	}, nil
}

func (f *RepoFilterQuery) String() string {
	if f == nil {
		return ""
	}

	return f.raw
}

// Match evaluates the query for a repository.
func (f *RepoFilterQuery) Match(repo *githubclt.Repository) (bool, error) {
	if f == nil {
		return true, nil
	}

	input := map[string]any{
		"owner":          repo.Owner,
		"name":           repo.Name,
		"full_name":      repo.FullName(),
		"default_branch": repo.DefaultBranch,
		"fork":           repo.Fork,
		"private":        repo.Private,
		"archived":       repo.Archived,
	}

	iter := f.query.Run(input)
	for {
		res, ok := iter.Next()
		if !ok {
			return false, nil
		}

		if err, isErr := res.(error); isErr {
			return false, fmt.Errorf("evaluating jq expression %q failed: %w", f.raw, err)
		}

		if matched, isBool := res.(bool); isBool && matched {
			return true, nil
		}
	}
}
