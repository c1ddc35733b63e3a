package health

import (
	"ApiMonitor/internal/monitor/domain"
	"fmt"
	"strings"
)

// Classify maps a probe outcome to a verdict. Rules are checked in order and
// a latency equal to a threshold passes.
func Classify(spec domain.EndpointSpec, outcome domain.CheckOutcome) domain.Verdict {
	verdict, _ := evaluate(spec, outcome)
	return verdict
}

// Reason describes which rule produced the verdict.
func Reason(spec domain.EndpointSpec, outcome domain.CheckOutcome) string {
	_, reason := evaluate(spec, outcome)
	return reason
}

func evaluate(spec domain.EndpointSpec, outcome domain.CheckOutcome) (domain.Verdict, string) {
	if !outcome.Success {
		if outcome.Error == "" {
			return domain.VerdictUnhealthy, "request failed"
		}
		return domain.VerdictUnhealthy, outcome.Error
	}

	if outcome.StatusCode == nil || !spec.ExpectsStatus(*outcome.StatusCode) {
		return domain.VerdictUnhealthy, fmt.Sprintf("unexpected status code %s", statusText(outcome.StatusCode))
	}

	if spec.ResponseContains != "" && !strings.Contains(outcome.Body, spec.ResponseContains) {
		return domain.VerdictUnhealthy, fmt.Sprintf("response does not contain %q", spec.ResponseContains)
	}

	if outcome.LatencyMs != nil {
		latency := *outcome.LatencyMs

		if spec.SLAResponseTimeMs != nil && latency > *spec.SLAResponseTimeMs {
			return domain.VerdictUnhealthy, fmt.Sprintf("response time %.1fms exceeds SLA %.1fms", latency, *spec.SLAResponseTimeMs)
		}

		if spec.ExpectedResponseTimeMs != nil && latency > *spec.ExpectedResponseTimeMs {
			return domain.VerdictDegraded, fmt.Sprintf("response time %.1fms exceeds expected %.1fms", latency, *spec.ExpectedResponseTimeMs)
		}
	}

	return domain.VerdictHealthy, "ok"
}

func statusText(code *int) string {
	if code == nil {
		return "none"
	}
	return fmt.Sprintf("%d", *code)
}
