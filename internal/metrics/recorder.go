package metrics

import "time"

// Recorder receives observations from the markdown, admin and http modules.
type Recorder interface {
	ObserveRender(engine string, d time.Duration)
	ObserveHTTPRequest(route string, status int, d time.Duration)
	ObserveLogin(result string)
	ObserveOperation(kind string)
}

// NoopRecorder discards every observation.
type NoopRecorder struct{}

func (NoopRecorder) ObserveRender(string, time.Duration)           {}
func (NoopRecorder) ObserveHTTPRequest(string, int, time.Duration) {}
func (NoopRecorder) ObserveLogin(string)                           {}
func (NoopRecorder) ObserveOperation(string)                       {}
