// ABOUTME: Metrics package documentation
// ABOUTME: Prometheus instrumentation for transmit and receive paths
// Package metrics instruments the bridge with Prometheus counters.
//
// Each Metrics owns its registry, so several instances can coexist in one
// process. All Record methods accept a nil receiver.
package metrics
