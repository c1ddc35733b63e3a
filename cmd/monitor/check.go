package main

import (
	"ApiMonitor/internal/monitor/domain"
	"ApiMonitor/internal/monitor/health"
	runner "ApiMonitor/internal/monitor/runners"
	"ApiMonitor/pkg/logger"
	"ApiMonitor/pkg/validator"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	var (
		timeout  time.Duration
		expect   []int
		method   string
		contains string
		retries  int
		insecure bool
	)

	cmd := &cobra.Command{
		Use:   "check URL",
		Short: "Probe a URL once and print its health",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := args[0]
			if !validator.ValidateURL(url) {
				return fmt.Errorf("invalid URL: %q", url)
			}
			if !validator.ValidateMethod(method) {
				return fmt.Errorf("invalid method: %q", method)
			}

			spec := domain.EndpointSpec{
				ID:                  "check",
				URL:                 url,
				Method:              strings.ToUpper(method),
				Timeout:             timeout,
				MaxRetries:          retries,
				ExpectedStatusCodes: expect,
				ResponseContains:    contains,
				FollowRedirects:     true,
				VerifyTLS:           !insecure,
			}

			prober := runner.NewHTTPRunner(logger.Setup(logger.Config{
				Level:  "ERROR",
				Output: cmd.ErrOrStderr(),
			}))
			defer prober.Close()

			outcome := prober.Probe(cmd.Context(), spec)
			verdict := health.Classify(spec, outcome)
			printOutcome(cmd, spec, outcome, verdict)

			if verdict == domain.VerdictUnhealthy {
				return fmt.Errorf("%s is unhealthy: %s", url, health.Reason(spec, outcome))
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "request timeout")
	cmd.Flags().IntSliceVar(&expect, "expect", []int{http.StatusOK}, "expected status codes")
	cmd.Flags().StringVarP(&method, "method", "X", http.MethodGet, "HTTP method")
	cmd.Flags().StringVar(&contains, "contains", "", "substring the response body must contain")
	cmd.Flags().IntVar(&retries, "retries", 0, "retries after a transport failure")
	cmd.Flags().BoolVarP(&insecure, "insecure", "k", false, "skip TLS certificate verification")

	return cmd
}

func printOutcome(cmd *cobra.Command, spec domain.EndpointSpec, outcome domain.CheckOutcome, verdict domain.Verdict) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "URL:      %s %s\n", spec.Method, spec.URL)
	fmt.Fprintf(out, "Verdict:  %s\n", strings.ToUpper(verdict.String()))
	if outcome.StatusCode != nil {
		fmt.Fprintf(out, "Status:   %d\n", *outcome.StatusCode)
	}
	if outcome.LatencyMs != nil {
		fmt.Fprintf(out, "Latency:  %.1fms\n", *outcome.LatencyMs)
	}
	if outcome.Attempts > 1 {
		fmt.Fprintf(out, "Attempts: %d\n", outcome.Attempts)
	}
	if verdict != domain.VerdictHealthy {
		fmt.Fprintf(out, "Reason:   %s\n", health.Reason(spec, outcome))
	}
}
