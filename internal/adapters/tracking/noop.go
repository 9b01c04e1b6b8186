package tracking

import "context"

// NoopTracker discards all tracking calls. Used when no tracking server is
// configured.
type NoopTracker struct{}

func NewNoopTracker() *NoopTracker {
	return &NoopTracker{}
}

func (t *NoopTracker) StartRun(ctx context.Context, name string, tags map[string]string) string {
	return ""
}

func (t *NoopTracker) LogParams(ctx context.Context, runID string, params map[string]string)    {}
func (t *NoopTracker) LogMetrics(ctx context.Context, runID string, metrics map[string]float64) {}
func (t *NoopTracker) LogArtifact(ctx context.Context, runID string, localPath string)          {}
func (t *NoopTracker) EndRun(ctx context.Context, runID string)                                 {}
