package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReadingsFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tarotpipe_readings_fetched_total",
		Help: "Total readings fetched from the serving store",
	})

	ExamplesSynthesizedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tarotpipe_examples_synthesized_total",
		Help: "Training examples synthesized, by feedback outcome",
	}, []string{"feedback"})

	DatasetAppendDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tarotpipe_dataset_append_duration_seconds",
		Help:    "Dataset append duration in seconds",
		Buckets: prometheus.DefBuckets,
	})

	OptimizerRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tarotpipe_optimizer_runs_total",
		Help: "Optimizer runs, by outcome",
	}, []string{"optimizer", "status"})

	OptimizerRunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tarotpipe_optimizer_run_duration_seconds",
		Help:    "Optimizer run duration",
		Buckets: []float64{10, 30, 60, 120, 300, 900, 1800, 3600},
	}, []string{"optimizer"})

	EvaluationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tarotpipe_evaluations_total",
		Help: "Evaluation runs recorded",
	})

	CompositeScore = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "tarotpipe_composite_score",
		Help: "Composite quality score from the most recent evaluation",
	}, []string{"prompt_version", "dataset"})

	GuardrailViolationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tarotpipe_guardrail_violations_total",
		Help: "Guardrail violations observed during evaluation",
	}, []string{"metric"})

	LLMRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tarotpipe_llm_requests_total",
		Help: "Total LLM requests",
	}, []string{"model", "status"})

	LLMRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tarotpipe_llm_request_duration_seconds",
		Help:    "LLM request duration",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	}, []string{"model"})
)
