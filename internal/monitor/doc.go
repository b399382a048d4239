// ABOUTME: Monitor package documentation
// ABOUTME: Observability surface served alongside the bridge
// Package monitor serves a running bridge's metrics and live events.
//
// GET /metrics returns Prometheus metrics. GET /events upgrades to a
// websocket that receives a bridge/hello message followed by cycle,
// progress and marker events as JSON text frames.
//
// Example:
//
//	mon, err := monitor.NewServer(monitor.Config{Addr: ":9090", Metrics: m})
//	if err := mon.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	defer mon.Stop()
//
//	mon.Broadcast(protocol.TypeCycleStart, protocol.CycleStart{Cycle: 1})
package monitor
