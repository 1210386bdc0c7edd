package metrics

import "github.com/prometheus/client_golang/prometheus"

// Registry exposes the registry to tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
