package analysis

import "context"

// Pipeline stages reported through a ProgressFunc.
const (
	StageFetch   = "fetch"
	StageReturns = "returns"
	StageMetrics = "metrics"
	StageCharts  = "charts"
)

// ProgressFunc receives the name of each pipeline stage as it completes.
type ProgressFunc func(stage string)

type progressKey struct{}

// WithProgress attaches a progress callback to ctx. Run calls it after each
// stage; cached results skip the pipeline and report nothing.
func WithProgress(ctx context.Context, fn ProgressFunc) context.Context {
	return context.WithValue(ctx, progressKey{}, fn)
}

// ReportProgress calls the callback attached to ctx, if any.
func ReportProgress(ctx context.Context, stage string) {
	if fn, ok := ctx.Value(progressKey{}).(ProgressFunc); ok && fn != nil {
		fn(stage)
	}
}
