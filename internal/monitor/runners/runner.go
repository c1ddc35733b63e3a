package runner

import (
	"ApiMonitor/internal/monitor/domain"
	"context"
)

// Prober performs one check of an endpoint. Failures are reported in the
// returned outcome, never as an error.
type Prober interface {
	Probe(ctx context.Context, spec domain.EndpointSpec) domain.CheckOutcome
}
