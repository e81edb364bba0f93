// Package metrics defines the sink interface used to publish run summaries.
// Sinks like the Prometheus textfile, InfluxDB and MQTT implementations in
// infra/metrics are registered by name and combined with NewMultiSink when
// several are configured. Without configuration runs go to a NopSink.
package metrics
