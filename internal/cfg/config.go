// Package cfg loads and validates the depkeeper configuration file.
package cfg

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/pelletier/go-toml"
)

// EnvVarGithubToken overrides the github_api_token config file setting when
// it is set.
const EnvVarGithubToken = "DEPKEEPER_GITHUB_TOKEN"

const (
	defMergeMethod         = "merge"
	defMergeTimeoutSeconds = 30
	defPollIntervalSeconds = 10
	defLogFormat           = "logfmt"
	defLogLevel            = "info"
	defLogTimeKey          = "time"
	defIncludedReposFile   = "included_repos.txt"
	defExcludedReposFile   = "excluded_repos.txt"
)

type Config struct {
	GithubAPIToken string `toml:"github_api_token"`
	// Organization selects the organization whose repositories are
	// processed. If it is empty, the repositories of the authenticated
	// user are processed instead.
	Organization string `toml:"organization"`

	AuthorName                   string `toml:"author_name"`
	AuthorEmail                  string `toml:"author_email"`
	MergeMethod                  string `toml:"merge_method"`
	CountMergesAsPersonalCommits bool   `toml:"count_merges_as_personal_commits"`

	MergeTimeoutSeconds int64 `toml:"merge_timeout_seconds"`
	PollIntervalSeconds int64 `toml:"poll_interval_seconds"`

	SyncForks          bool `toml:"sync_forks"`
	EnableDependabot   bool `toml:"enable_dependabot"`
	MergeDependabotPRs bool `toml:"merge_dependabot_prs"`

	IncludedReposFile string `toml:"included_repos_file"`
	ExcludedReposFile string `toml:"excluded_repos_file"`
	// RepositoryFilter is an optional jq expression that is evaluated per
	// discovered repository. Repositories for that it does not evaluate
	// to true are excluded from processing.
	RepositoryFilter string `toml:"repository_filter"`

	MetricsListenAddr string `toml:"metrics_listen_addr"`

	LogFormat  string `toml:"log_format"`
	LogLevel   string `toml:"log_level"`
	LogTimeKey string `toml:"log_time_key"`
}

func Load(reader io.Reader) (*Config, error) {
	result := Config{
		MergeMethod:         defMergeMethod,
		MergeTimeoutSeconds: defMergeTimeoutSeconds,
		PollIntervalSeconds: defPollIntervalSeconds,
		SyncForks:           true,
		EnableDependabot:    true,
		MergeDependabotPRs:  true,
		IncludedReposFile:   defIncludedReposFile,
		ExcludedReposFile:   defExcludedReposFile,
		LogFormat:           defLogFormat,
		LogLevel:            defLogLevel,
		LogTimeKey:          defLogTimeKey,
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	if err := toml.Unmarshal(data, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

func (c *Config) Marshal(writer io.Writer) error {
	return toml.NewEncoder(writer).Encode(c)
}

func (c *Config) MergeTimeout() time.Duration {
	return time.Duration(c.MergeTimeoutSeconds) * time.Second
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// Validate returns an error when the configuration is unusable.
// The process must not start processing repositories with an invalid
// configuration.
func (c *Config) Validate() error {
	if c.GithubAPIToken == "" {
		return fmt.Errorf("github_api_token is unset, set it in the config file or via the environment variable %s", EnvVarGithubToken)
	}

	switch c.MergeMethod {
	case "merge", "rebase", "squash":
	default:
		return fmt.Errorf("merge_method is %q, must be one of: merge, rebase, squash", c.MergeMethod)
	}

	if c.PollIntervalSeconds <= 0 {
		return fmt.Errorf("poll_interval_seconds is %d, must be >0", c.PollIntervalSeconds)
	}

	if c.PollIntervalSeconds >= c.MergeTimeoutSeconds {
		return fmt.Errorf(
			"poll_interval_seconds (%d) must be smaller than merge_timeout_seconds (%d)",
			c.PollIntervalSeconds, c.MergeTimeoutSeconds,
		)
	}

	if c.CountMergesAsPersonalCommits {
		if c.AuthorName == "" || c.AuthorEmail == "" {
			return errors.New("author_name and author_email must be set when count_merges_as_personal_commits is enabled")
		}
	}

	return nil
}
