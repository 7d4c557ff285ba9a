// Package metrics records load metrics behind the Recorder interface.
//
// Components receive a Recorder and default to NoopRecorder, so metrics stay
// optional without nil checks at call sites:
//
//	recorder := metrics.NewPrometheusRecorder(prom.NewRegistry())
//	l := loader.New(cfg, loader.WithRecorder(recorder))
//
// The Prometheus implementation can be scraped over HTTP (HTTPHandler) or
// flushed to a node_exporter textfile (WriteTextfile).
package metrics
