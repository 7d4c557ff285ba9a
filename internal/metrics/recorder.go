package metrics

import "time"

// ResultLabel enumerates outcome categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultFailed   ResultLabel = "failed"
	ResultCanceled ResultLabel = "canceled"
)

// Stage names used by the loader.
const (
	StageRead     = "read"
	StageBuild    = "build"
	StageLink     = "link"
	StageMainDoc  = "main_doc"
	StageManifest = "manifest"
	StageStore    = "store"
	StagePublish  = "publish"
)

// Recorder defines observability hooks for version loads.
type Recorder interface {
	ObserveStageDuration(version, stage string, d time.Duration)
	ObserveVersionDuration(version string, d time.Duration)
	IncVersionResult(version string, result ResultLabel)
	SetVersionDocs(version string, published, drafts int)
	IncDocFailure(version string)
}

// NoopRecorder is a Recorder that does nothing.
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, string, time.Duration) {}
func (NoopRecorder) ObserveVersionDuration(string, time.Duration)       {}
func (NoopRecorder) IncVersionResult(string, ResultLabel)               {}
func (NoopRecorder) SetVersionDocs(string, int, int)                    {}
func (NoopRecorder) IncDocFailure(string)                               {}

// ResultFor maps an error to its result label.
func ResultFor(err error, canceled bool) ResultLabel {
	switch {
	case err == nil:
		return ResultSuccess
	case canceled:
		return ResultCanceled
	default:
		return ResultFailed
	}
}
