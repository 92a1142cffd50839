// Package metrics records service metrics behind the Recorder interface.
// NoopRecorder is the default; PrometheusRecorder registers collectors on a
// registry and serves them through Handler.
package metrics
