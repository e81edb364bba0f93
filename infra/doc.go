// Package infra contains technical adapters: the workbook reader, the
// branch-and-bound solver backend, MQTT publishing and metrics exporters.
// These packages depend only on the interfaces defined in the core
// packages.
package infra
