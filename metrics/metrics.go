// Package metrics defines the instrumentation contract for paygate
// with noop and Prometheus implementations.
package metrics

import "time"

// Recorder receives gate and verification events. Counter names are
// event identifiers such as gate_allowed or payment_rejected; labels
// typically carry the network.
type Recorder interface {
	IncCounter(name string, labels map[string]string)
	ObserveLatency(name string, duration time.Duration, labels map[string]string)
}
