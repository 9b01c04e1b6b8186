package tracking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// MLflowTracker records pipeline runs against an MLflow tracking server via
// its REST API. Every method is best-effort: failures are logged and
// swallowed so tracking outages never fail a pipeline run.
type MLflowTracker struct {
	baseURL      string
	experiment   string
	experimentID string
	httpClient   *http.Client
	logger       *slog.Logger
}

// NewMLflowTracker creates a tracker against the given MLflow server.
func NewMLflowTracker(baseURL, experiment string, logger *slog.Logger) *MLflowTracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &MLflowTracker{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		experiment: experiment,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

type mlflowTag struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type mlflowMetric struct {
	Key       string  `json:"key"`
	Value     float64 `json:"value"`
	Timestamp int64   `json:"timestamp"`
}

type mlflowParam struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// StartRun creates an MLflow run and returns its id, or empty when the
// server is unreachable. An empty id turns the remaining calls into no-ops.
func (t *MLflowTracker) StartRun(ctx context.Context, name string, tags map[string]string) string {
	experimentID, err := t.ensureExperiment(ctx)
	if err != nil {
		t.logger.Warn("mlflow unavailable, tracking disabled for this run", "error", err)
		return ""
	}

	runTags := make([]mlflowTag, 0, len(tags)+1)
	runTags = append(runTags, mlflowTag{Key: "mlflow.runName", Value: name})
	for k, v := range tags {
		runTags = append(runTags, mlflowTag{Key: k, Value: v})
	}

	var resp struct {
		Run struct {
			Info struct {
				RunID string `json:"run_id"`
			} `json:"info"`
		} `json:"run"`
	}
	err = t.post(ctx, "/api/2.0/mlflow/runs/create", map[string]any{
		"experiment_id": experimentID,
		"run_name":      name,
		"start_time":    time.Now().UnixMilli(),
		"tags":          runTags,
	}, &resp)
	if err != nil {
		t.logger.Warn("failed to create mlflow run", "error", err)
		return ""
	}
	return resp.Run.Info.RunID
}

// LogParams records run parameters.
func (t *MLflowTracker) LogParams(ctx context.Context, runID string, params map[string]string) {
	if runID == "" {
		return
	}
	batch := make([]mlflowParam, 0, len(params))
	for k, v := range params {
		batch = append(batch, mlflowParam{Key: k, Value: v})
	}
	err := t.post(ctx, "/api/2.0/mlflow/runs/log-batch", map[string]any{
		"run_id": runID,
		"params": batch,
	}, nil)
	if err != nil {
		t.logger.Warn("failed to log mlflow params", "run_id", runID, "error", err)
	}
}

// LogMetrics records run metrics at the current timestamp.
func (t *MLflowTracker) LogMetrics(ctx context.Context, runID string, metrics map[string]float64) {
	if runID == "" {
		return
	}
	now := time.Now().UnixMilli()
	batch := make([]mlflowMetric, 0, len(metrics))
	for k, v := range metrics {
		batch = append(batch, mlflowMetric{Key: k, Value: v, Timestamp: now})
	}
	err := t.post(ctx, "/api/2.0/mlflow/runs/log-batch", map[string]any{
		"run_id":  runID,
		"metrics": batch,
	}, nil)
	if err != nil {
		t.logger.Warn("failed to log mlflow metrics", "run_id", runID, "error", err)
	}
}

// LogArtifact records the artifact's local path as a run tag. The pipeline
// runs next to its artifact store, so a path reference is enough to find
// the prompt file for a run.
func (t *MLflowTracker) LogArtifact(ctx context.Context, runID string, localPath string) {
	if runID == "" {
		return
	}
	err := t.post(ctx, "/api/2.0/mlflow/runs/set-tag", map[string]any{
		"run_id": runID,
		"key":    "artifact_path",
		"value":  localPath,
	}, nil)
	if err != nil {
		t.logger.Warn("failed to tag mlflow artifact", "run_id", runID, "error", err)
	}
}

// EndRun marks the run finished.
func (t *MLflowTracker) EndRun(ctx context.Context, runID string) {
	if runID == "" {
		return
	}
	err := t.post(ctx, "/api/2.0/mlflow/runs/update", map[string]any{
		"run_id":   runID,
		"status":   "FINISHED",
		"end_time": time.Now().UnixMilli(),
	}, nil)
	if err != nil {
		t.logger.Warn("failed to end mlflow run", "run_id", runID, "error", err)
	}
}

// ensureExperiment resolves the configured experiment name to an id,
// creating the experiment on first use.
func (t *MLflowTracker) ensureExperiment(ctx context.Context) (string, error) {
	if t.experimentID != "" {
		return t.experimentID, nil
	}

	var got struct {
		Experiment struct {
			ExperimentID string `json:"experiment_id"`
		} `json:"experiment"`
	}
	err := t.get(ctx, "/api/2.0/mlflow/experiments/get-by-name?experiment_name="+url.QueryEscape(t.experiment), &got)
	if err == nil && got.Experiment.ExperimentID != "" {
		t.experimentID = got.Experiment.ExperimentID
		return t.experimentID, nil
	}

	var created struct {
		ExperimentID string `json:"experiment_id"`
	}
	err = t.post(ctx, "/api/2.0/mlflow/experiments/create", map[string]any{
		"name": t.experiment,
	}, &created)
	if err != nil {
		return "", err
	}
	t.experimentID = created.ExperimentID
	return t.experimentID, nil
}

func (t *MLflowTracker) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", t.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return t.do(req, out)
}

func (t *MLflowTracker) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", t.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return t.do(req, out)
}

func (t *MLflowTracker) do(req *http.Request, out any) error {
	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("mlflow error: %s - %s", resp.Status, string(respBody))
	}
	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
