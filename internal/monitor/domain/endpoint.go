package domain

import "time"

type EndpointSpec struct {
	ID                     string            `json:"id"`
	URL                    string            `json:"url"`
	Method                 string            `json:"method"`
	Headers                map[string]string `json:"headers,omitempty"`
	Body                   string            `json:"body,omitempty"`
	Timeout                time.Duration     `json:"timeout"`
	Interval               time.Duration     `json:"interval"`
	MaxRetries             int               `json:"max_retries"`
	ExpectedStatusCodes    []int             `json:"expected_status_codes"`
	ResponseContains       string            `json:"response_contains,omitempty"`
	ExpectedResponseTimeMs *float64          `json:"expected_response_time_ms,omitempty"`
	SLAResponseTimeMs      *float64          `json:"sla_response_time_ms,omitempty"`
	SLAUptimePercentage    *float64          `json:"sla_uptime_percentage,omitempty"`
	DNSServer              string            `json:"dns_server,omitempty"`
	FollowRedirects        bool              `json:"follow_redirects"`
	VerifyTLS              bool              `json:"verify_tls"`
}

// DefaultExpectedStatusCodes is used when an endpoint does not list any codes.
var DefaultExpectedStatusCodes = []int{200}

func (e EndpointSpec) ExpectsStatus(code int) bool {
	codes := e.ExpectedStatusCodes
	if len(codes) == 0 {
		codes = DefaultExpectedStatusCodes
	}
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}

// HistoryCapacity returns how many outcomes cover maxHistoryDays at the endpoint's
// interval, clamped to [1, MaxHistoryEntries].
func (e EndpointSpec) HistoryCapacity(maxHistoryDays int) int {
	if e.Interval <= 0 || maxHistoryDays <= 0 {
		return MaxHistoryEntries
	}
	window := time.Duration(maxHistoryDays) * 24 * time.Hour
	n := int(window / e.Interval)
	if n < 1 {
		return 1
	}
	if n > MaxHistoryEntries {
		return MaxHistoryEntries
	}
	return n
}

const MaxHistoryEntries = 10000

func Float(v float64) *float64 {
	return &v
}
