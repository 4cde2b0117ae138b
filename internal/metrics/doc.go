// Package metrics records build observations behind the Recorder interface.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so instrumentation never needs a nil check:
//
//	gen := site.New(cfg, site.WithRecorder(metrics.NewPrometheusRecorder(reg)))
//
// PrometheusRecorder registers its collectors on the registry it is given and
// HTTPHandler exposes that registry for scraping.
package metrics
