package maintain

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/simplesurance/depkeeper/internal/logfields"
)

const metricNamespace = "depkeeper"

const (
	evaluationsMetricName    = "pr_evaluations_total"
	mergesMetricName         = "pr_merges_total"
	processedReposMetricName = "processed_repositories_total"
)

const (
	repositoryLabel = "repository"
	decisionLabel   = "decision"
	outcomeLabel    = "outcome"
)

type outcomeLabelVal string

const (
	outcomeLabelMergedVal    outcomeLabelVal = "merged"
	outcomeLabelNotMergedVal outcomeLabelVal = "not_merged"
	outcomeLabelFailedVal    outcomeLabelVal = "failed"
)

type metricCollector struct {
	logger         *zap.Logger
	evaluations    *prometheus.CounterVec
	merges         *prometheus.CounterVec
	processedRepos prometheus.Counter
}

var metrics = newMetricCollector()

func newMetricCollector() *metricCollector {
	return &metricCollector{
		logger: zap.L().Named(loggerName).Named("metrics"),
		evaluations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricNamespace,
				Name:      evaluationsMetricName,
				Help:      "count of pull request mergeability evaluations per decision",
			},
			[]string{repositoryLabel, decisionLabel},
		),
		merges: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricNamespace,
				Name:      mergesMetricName,
				Help:      "count of pull request merge attempts per outcome",
			},
			[]string{repositoryLabel, outcomeLabel},
		),
		processedRepos: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricNamespace,
				Name:      processedReposMetricName,
				Help:      "count of processed repositories",
			},
		),
	}
}

func (m *metricCollector) logGetMetricFailed(metricName string, err error) {
	m.logger.Warn(
		"could not record metric",
		zap.String("metric", metricName),
		logfields.Event("recording_metric_failed"),
		zap.Error(err),
	)
}

func (m *metricCollector) EvaluationInc(repository string, decision Decision) {
	cnt, err := m.evaluations.GetMetricWith(prometheus.Labels{
		repositoryLabel: repository,
		decisionLabel:   decision.String(),
	})
	if err != nil {
		m.logGetMetricFailed(evaluationsMetricName, err)
		return
	}

	cnt.Inc()
}

func (m *metricCollector) MergeInc(repository string, outcome outcomeLabelVal) {
	cnt, err := m.merges.GetMetricWith(prometheus.Labels{
		repositoryLabel: repository,
		outcomeLabel:    string(outcome),
	})
	if err != nil {
		m.logGetMetricFailed(mergesMetricName, err)
		return
	}

	cnt.Inc()
}

func (m *metricCollector) ProcessedRepositoryInc() {
	m.processedRepos.Inc()
}
