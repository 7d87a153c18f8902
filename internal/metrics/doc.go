// Package metrics defines the Prometheus collectors exported by the
// video library server: HTTP request metrics, catalog store query
// metrics, and scanner run metrics.
package metrics
