package maintain

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/simplesurance/depkeeper/internal/githubclt"
	"github.com/simplesurance/depkeeper/internal/logfields"
)

// RepoSelector holds the include and exclude sets that determine which
// repositories are processed.
// Both sets are loaded once at startup and read-only afterwards.
//
// When the include set is empty, all repositories are included. The exclude
// set is consulted per pass, an excluded repository is skipped by every pass.
type RepoSelector struct {
	include map[string]struct{}
	exclude map[string]struct{}
}

// LoadRepoSelector reads the include and exclude lists from plain text files
// with one "owner/name" entry per line.
// Blank lines and lines starting with '#' are ignored.
// A missing file is not an error, the corresponding set stays empty.
func LoadRepoSelector(includePath, excludePath string) (*RepoSelector, error) {
	logger := zap.L().Named("repo_selector")

	include, err := loadRepoList(includePath)
	if err != nil {
		return nil, fmt.Errorf("loading inclusion list failed: %w", err)
	}

	if include == nil {
		logger.Info(
			"no inclusion file found, proceeding with all repositories",
			logfields.Event("repo_inclusion_file_missing"),
			zap.String("path", includePath),
		)
	}

	exclude, err := loadRepoList(excludePath)
	if err != nil {
		return nil, fmt.Errorf("loading exclusion list failed: %w", err)
	}

	if exclude == nil {
		logger.Info(
			"no exclusion file found, proceeding without exclusions",
			logfields.Event("repo_exclusion_file_missing"),
			zap.String("path", excludePath),
		)
	}

	return &RepoSelector{
		include: include,
		exclude: exclude,
	}, nil
}

func loadRepoList(path string) (map[string]struct{}, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, err
	}

	defer file.Close()

	result := map[string]struct{}{}

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		result[line] = struct{}{}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// Included returns true if the repository is in the include set or the
// include set is empty.
func (s *RepoSelector) Included(fullName string) bool {
	if len(s.include) == 0 {
		return true
	}

	_, exist := s.include[fullName]
	return exist
}

// Excluded returns true if the repository is in the exclude set.
func (s *RepoSelector) Excluded(fullName string) bool {
	_, exist := s.exclude[fullName]
	return exist
}

// Filter returns the repositories that are in the include set.
func (s *RepoSelector) Filter(repos []*githubclt.Repository) []*githubclt.Repository {
	if len(s.include) == 0 {
		return repos
	}

	result := make([]*githubclt.Repository, 0, len(repos))
	for _, repo := range repos {
		if s.Included(repo.FullName()) {
			result = append(result, repo)
		}
	}

	return result
}
