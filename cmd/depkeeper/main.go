package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
	zaplogfmt "github.com/sykesm/zap-logfmt"
	"github.com/thecodeteam/goodbye"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/simplesurance/depkeeper/internal/cfg"
	"github.com/simplesurance/depkeeper/internal/githubclt"
	"github.com/simplesurance/depkeeper/internal/logfields"
	"github.com/simplesurance/depkeeper/internal/maintain"
)

const appName = "depkeeper"

var logger *zap.Logger

// Version is set via a ldflag on compilation
var Version = "unknown"

func exitOnErr(msg string, err error) {
	if err == nil {
		return
	}

	fmt.Fprintln(os.Stderr, "ERROR:", msg+", error:", err.Error())
	os.Exit(1)
}

func panicHandler() {
	if r := recover(); r != nil {
		logger.Info(
			"panic caught, terminating gracefully",
			zap.String("panic", fmt.Sprintf("%v", r)),
			zap.StackSkip("stacktrace", 1),
		)

		ctx, cancelFn := context.WithTimeout(context.Background(), time.Minute)
		defer cancelFn()

		goodbye.Exit(ctx, 1)
	}
}

type arguments struct {
	Verbose     *bool
	ConfigFile  *string
	DryRun      *bool
	ShowVersion *bool
}

var args arguments

const defConfigFile = "/etc/depkeeper/config.toml"

func mustParseCommandlineParams() {
	args = arguments{
		Verbose: pflag.BoolP(
			"verbose",
			"v",
			false,
			"enable verbose logging",
		),
		ConfigFile: pflag.StringP(
			"cfg-file",
			"c",
			defConfigFile,
			"path to the depkeeper configuration file",
		),
		DryRun: pflag.BoolP(
			"dry-run",
			"n",
			false,
			"simulate all operations that would change something on github",
		),
		ShowVersion: pflag.Bool(
			"version",
			false,
			"print the version and exit",
		),
	}

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTION]\nSync forks, enable Dependabot security updates and merge Dependabot PRs.\n", appName)
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		pflag.PrintDefaults()
	}

	pflag.Parse()
}

func mustParseCfg() *cfg.Config {
	// we use exitOnErr in this function instead of logger.Fatal() because
	// the logger is not initialized yet

	file, err := os.Open(*args.ConfigFile)
	exitOnErr("could not open configuration file", err)
	defer file.Close()

	config, err := cfg.Load(file)
	if err != nil {
		exitOnErr(fmt.Sprintf("could not load configuration file: %s", *args.ConfigFile), err)
	}

	if token := os.Getenv(cfg.EnvVarGithubToken); token != "" {
		config.GithubAPIToken = token
	}

	return config
}

func initLogFmtLogger(config *cfg.Config, logLevel zapcore.Level) *zap.Logger {
	cfg := zapEncoderConfig(config)

	logger := zap.New(zapcore.NewCore(
		zaplogfmt.NewEncoder(cfg),
		os.Stdout,
		logLevel),
	)

	return logger
}

func zapEncoderConfig(config *cfg.Config) zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()

	cfg.LevelKey = "loglevel"
	cfg.TimeKey = config.LogTimeKey
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeDuration = zapcore.StringDurationEncoder

	return cfg
}

func mustInitZapFormatLogger(config *cfg.Config, logLevel zapcore.Level) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.Sampling = nil
	cfg.EncoderConfig = zapEncoderConfig(config)
	cfg.OutputPaths = []string{"stdout"}
	cfg.Encoding = config.LogFormat
	cfg.Level = zap.NewAtomicLevelAt(logLevel)

	logger, err := cfg.Build()
	exitOnErr("could not initialize logger", err)

	return logger
}

func mustInitLogger(config *cfg.Config) {
	var logLevel zapcore.Level
	if *args.Verbose {
		logLevel = zapcore.DebugLevel
	} else {
		if err := (&logLevel).Set(config.LogLevel); err != nil {
			fmt.Fprintf(os.Stderr, "can not set log level to %q: %s\n", config.LogLevel, err)
			os.Exit(2)
		}
	}

	switch config.LogFormat {
	case "logfmt":
		logger = initLogFmtLogger(config, logLevel)
	case "console", "json":
		logger = mustInitZapFormatLogger(config, logLevel)
	default:
		fmt.Fprintf(os.Stderr, "unsupported log-format argument: %q\n", config.LogFormat)
		os.Exit(2)
	}

	logger = logger.Named("main")
	zap.ReplaceGlobals(logger)

	goodbye.Register(func(context.Context, os.Signal) {
		if err := logger.Sync(); err != nil {
			fmt.Fprintf(os.Stderr, "flushing logs failed: %s\n", err)
		}
	})
}

func startMetricsServer(listenAddr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	httpServer := http.Server{
		Addr:    listenAddr,
		Handler: mux,
	}

	goodbye.Register(func(context.Context, os.Signal) {
		const shutdownTimeout = 5 * time.Second
		ctx, cancelFn := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelFn()

		if err := httpServer.Shutdown(ctx); err != nil {
			logger.Warn(
				"shutting down metrics server failed",
				logfields.Event("metrics_server_termination_failed"),
				zap.Error(err),
			)
		}
	})

	go func() {
		defer panicHandler()

		logger.Info(
			"metrics server started",
			logfields.Event("metrics_server_started"),
			zap.String("listen_addr", listenAddr),
		)

		err := httpServer.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return
		}

		logger.Fatal(
			"metrics server terminated unexpectedly",
			logfields.Event("metrics_server_terminated_unexpectedly"),
			zap.Error(err),
		)
	}()
}

func hide(in string) string {
	if in == "" {
		return in
	}

	return "**hidden**"
}

func main() {
	defer panicHandler()

	defer goodbye.Exit(context.Background(), 1)
	goodbye.Notify(context.Background())

	mustParseCommandlineParams()

	if *args.ShowVersion {
		fmt.Printf("%s %s\n", appName, Version)
		os.Exit(0) // nolint:gocritic // defer functions won't run
	}

	// secrets can be provided via a .env file instead of the config file
	_ = godotenv.Load()

	config := mustParseCfg()

	mustInitLogger(config)

	if err := config.Validate(); err != nil {
		logger.Fatal(
			"configuration is invalid",
			logfields.Event("cfg_invalid"),
			zap.Error(err),
		)
	}

	logger.Info(
		"loaded cfg file",
		logfields.Event("cfg_loaded"),
		zap.String("cfg_file", *args.ConfigFile),
		zap.String("github_api_token", hide(config.GithubAPIToken)),
		zap.String("organization", config.Organization),
		zap.String("merge_method", config.MergeMethod),
		zap.Bool("count_merges_as_personal_commits", config.CountMergesAsPersonalCommits),
		zap.Duration("merge_timeout", config.MergeTimeout()),
		zap.Duration("poll_interval", config.PollInterval()),
		zap.Bool("sync_forks", config.SyncForks),
		zap.Bool("enable_dependabot", config.EnableDependabot),
		zap.Bool("merge_dependabot_prs", config.MergeDependabotPRs),
		zap.String("repository_filter", config.RepositoryFilter),
		zap.String("log_format", config.LogFormat),
		zap.String("log_level", config.LogLevel),
		zap.Bool("dry_run", *args.DryRun),
	)

	selector, err := maintain.LoadRepoSelector(config.IncludedReposFile, config.ExcludedReposFile)
	if err != nil {
		logger.Fatal(
			"loading repository include/exclude lists failed",
			logfields.Event("repo_selector_load_failed"),
			zap.Error(err),
		)
	}

	filter, err := maintain.NewRepoFilterQuery(config.RepositoryFilter)
	if err != nil {
		logger.Fatal(
			"parsing repository filter query failed",
			logfields.Event("repo_filter_query_invalid"),
			zap.Error(err),
		)
	}

	if config.MetricsListenAddr != "" {
		startMetricsServer(config.MetricsListenAddr)
	}

	var ghClient maintain.GithubClient = githubclt.New(config.GithubAPIToken)
	if *args.DryRun {
		ghClient = maintain.NewDryGithubClient(ghClient, logger)
	}

	maintainer, err := maintain.NewMaintainer(
		ghClient,
		maintain.NewRetryer(),
		selector,
		filter,
		&maintain.MergePolicy{
			Method:          config.MergeMethod,
			CountAsPersonal: config.CountMergesAsPersonalCommits,
			AuthorName:      config.AuthorName,
			AuthorEmail:     config.AuthorEmail,
		},
		maintain.RunConfig{
			Org:                config.Organization,
			SyncForks:          config.SyncForks,
			EnableDependabot:   config.EnableDependabot,
			MergeDependabotPRs: config.MergeDependabotPRs,
			MergeTimeout:       config.MergeTimeout(),
			PollInterval:       config.PollInterval(),
		},
	)
	if err != nil {
		logger.Fatal(
			"initializing maintainer failed",
			logfields.Event("maintainer_init_failed"),
			zap.Error(err),
		)
	}

	ctx, cancelFn := context.WithCancel(context.Background())
	defer cancelFn()

	goodbye.Register(func(_ context.Context, sig os.Signal) {
		if sig != nil {
			logger.Info(fmt.Sprintf("received signal %s, terminating at the next poll boundary", sig.String()))
		}

		maintainer.Stop()
		cancelFn()
	})

	if err := maintainer.Run(ctx); err != nil {
		logger.Error(
			"run failed",
			logfields.Event("run_failed"),
			zap.Error(err),
		)

		goodbye.Exit(context.Background(), 1)
		return
	}

	goodbye.Exit(context.Background(), 0)
}
