package stats

import (
	"ApiMonitor/internal/monitor/domain"
	"fmt"
	"math"
	"sort"
	"sync"
)

// Entry is one recorded check.
type Entry struct {
	Outcome domain.CheckOutcome `json:"outcome"`
	Verdict domain.Verdict      `json:"verdict"`
}

type endpointHistory struct {
	mu   sync.RWMutex
	spec domain.EndpointSpec
	ring *Ring[Entry]
}

// Aggregator keeps a bounded history per endpoint. The endpoint set is fixed
// by Register before checks start; after that only per-endpoint locks are taken.
type Aggregator struct {
	mu        sync.RWMutex
	endpoints map[string]*endpointHistory
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		endpoints: make(map[string]*endpointHistory),
	}
}

func (a *Aggregator) Register(spec domain.EndpointSpec, capacity int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.endpoints[spec.ID]; exists {
		return
	}
	a.endpoints[spec.ID] = &endpointHistory{
		spec: spec,
		ring: NewRing[Entry](capacity),
	}
}

func (a *Aggregator) lookup(id string) (*endpointHistory, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	h, ok := a.endpoints[id]
	return h, ok
}

// Record panics for an unregistered endpoint.
func (a *Aggregator) Record(id string, outcome domain.CheckOutcome, verdict domain.Verdict) {
	h, ok := a.lookup(id)
	if !ok {
		panic(fmt.Sprintf("stats: record for unregistered endpoint %q", id))
	}

	h.mu.Lock()
	h.ring.Push(Entry{Outcome: outcome, Verdict: verdict})
	h.mu.Unlock()
}

func (a *Aggregator) History(id string) ([]Entry, bool) {
	h, ok := a.lookup(id)
	if !ok {
		return nil, false
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.ring.Items(), true
}

func (a *Aggregator) Stats(id string) (domain.Stats, bool) {
	entries, ok := a.History(id)
	if !ok {
		return domain.Stats{}, false
	}

	h, _ := a.lookup(id)
	return Compute(h.spec, entries), true
}

// Compute derives Stats from a history slice ordered oldest first.
func Compute(spec domain.EndpointSpec, entries []Entry) domain.Stats {
	stats := domain.Stats{
		EndpointID:  spec.ID,
		TotalChecks: len(entries),
	}
	if len(entries) == 0 {
		return stats
	}

	latencies := make([]float64, 0, len(entries))
	for _, e := range entries {
		if e.Verdict == domain.VerdictUnhealthy {
			stats.FailedChecks++
			continue
		}
		stats.SuccessfulChecks++
		if e.Outcome.LatencyMs != nil {
			latencies = append(latencies, *e.Outcome.LatencyMs)
		}
	}

	stats.UptimePercentage = float64(stats.SuccessfulChecks) / float64(stats.TotalChecks) * 100

	for i := len(entries) - 1; i >= 0 && entries[i].Verdict == domain.VerdictUnhealthy; i-- {
		stats.ConsecutiveFailures++
	}

	last := entries[len(entries)-1]
	stats.LastVerdict = last.Verdict
	checkedAt := last.Outcome.Timestamp
	stats.LastCheckedAt = &checkedAt

	if len(latencies) > 0 {
		sort.Float64s(latencies)

		var sum float64
		for _, l := range latencies {
			sum += l
		}
		stats.AverageResponseTimeMs = domain.Float(sum / float64(len(latencies)))
		stats.MinResponseTimeMs = domain.Float(latencies[0])
		stats.MaxResponseTimeMs = domain.Float(latencies[len(latencies)-1])
		stats.P95ResponseTimeMs = domain.Float(Percentile(latencies, 95))
		stats.P99ResponseTimeMs = domain.Float(Percentile(latencies, 99))
	}

	stats.SLAMet = slaMet(spec, stats)
	return stats
}

// Percentile uses the nearest-rank method on an ascending slice.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := int(math.Ceil(p / 100 * float64(len(sorted))))
	if rank < 1 {
		rank = 1
	}
	if rank > len(sorted) {
		rank = len(sorted)
	}
	return sorted[rank-1]
}

func slaMet(spec domain.EndpointSpec, stats domain.Stats) *bool {
	if spec.SLAUptimePercentage == nil && spec.SLAResponseTimeMs == nil {
		return nil
	}

	met := true
	if spec.SLAUptimePercentage != nil && stats.UptimePercentage < *spec.SLAUptimePercentage {
		met = false
	}
	if spec.SLAResponseTimeMs != nil && stats.AverageResponseTimeMs != nil &&
		*stats.AverageResponseTimeMs > *spec.SLAResponseTimeMs {
		met = false
	}
	return &met
}
