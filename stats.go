package hub

import "github.com/seniorjoinu/ic-event-hub/pkg/cmap"

// DeliveryStats tracks a running per-endpoint count of dispatched batches,
// keyed by Endpoint.key(). Dispatcher.SendEvents records one dispatch per
// remote call it issues. It is safe for concurrent use, built on pkg/cmap's
// thread-safe map.
type DeliveryStats struct {
	batches *cmap.CMap
}

// NewDeliveryStats builds an empty DeliveryStats.
func NewDeliveryStats() *DeliveryStats {
	return &DeliveryStats{batches: cmap.New()}
}

// RecordDispatch increments the batch count for endpoint by one.
func (s *DeliveryStats) RecordDispatch(endpoint Endpoint) {
	s.batches.Add(endpoint.key(), 1)
}

// BatchCount returns the number of batches dispatched to endpoint so far.
func (s *DeliveryStats) BatchCount(endpoint Endpoint) int {
	v, _ := s.batches.Get(endpoint.key())
	return v
}

// EndpointCount returns the number of distinct endpoints that have had at
// least one batch dispatched.
func (s *DeliveryStats) EndpointCount() int {
	return s.batches.Len()
}

// Reset clears all recorded counts.
func (s *DeliveryStats) Reset() {
	s.batches.Clear()
}
