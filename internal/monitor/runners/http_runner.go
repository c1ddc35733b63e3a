package runner

import (
	"ApiMonitor/internal/monitor/domain"
	"ApiMonitor/internal/shared/constants"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/puzpuzpuz/xsync/v4"
)

type HTTPRunner struct {
	clients *xsync.Map[string, *http.Client]
	logger  *slog.Logger
}

func NewHTTPRunner(logger *slog.Logger) *HTTPRunner {
	if logger == nil {
		logger = slog.Default()
	}

	return &HTTPRunner{
		clients: xsync.NewMap[string, *http.Client](),
		logger:  logger.With("component", "prober"),
	}
}

// Probe runs up to 1+MaxRetries attempts, each bounded by spec.Timeout.
// Only transport failures are retried; any HTTP response ends the loop.
func (r *HTTPRunner) Probe(ctx context.Context, spec domain.EndpointSpec) domain.CheckOutcome {
	var (
		outcome  domain.CheckOutcome
		attempts int
	)

	operation := func() error {
		attempts++

		var retryable bool
		outcome, retryable = r.attempt(ctx, spec)
		if outcome.Success {
			return nil
		}

		err := errors.New(outcome.Error)
		if !retryable || ctx.Err() != nil {
			return backoff.Permanent(err)
		}

		r.logger.Debug("probe attempt failed",
			"endpoint_id", spec.ID,
			"attempt", attempts,
			"error", outcome.Error,
		)
		return err
	}

	retries := spec.MaxRetries
	if retries < 0 {
		retries = 0
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(&backoff.ZeroBackOff{}, uint64(retries)), ctx)
	_ = backoff.Retry(operation, policy)

	outcome.Attempts = attempts
	if !outcome.Success && attempts > 1 {
		outcome.Error = fmt.Sprintf("%s (after %d attempts)", outcome.Error, attempts)
	}

	return outcome
}

func (r *HTTPRunner) attempt(ctx context.Context, spec domain.EndpointSpec) (domain.CheckOutcome, bool) {
	timeout := spec.Timeout
	if timeout <= 0 {
		timeout = constants.DefaultProbeTimeout
	}

	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	method := strings.ToUpper(spec.Method)
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if spec.Body != "" {
		body = strings.NewReader(spec.Body)
	}

	req, err := http.NewRequestWithContext(attemptCtx, method, spec.URL, body)
	if err != nil {
		return domain.NewErrorOutcome(spec.ID, fmt.Errorf("failed to create request: %w", err)), false
	}

	for key, value := range spec.Headers {
		req.Header.Set(key, value)
	}

	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", constants.UserAgent)
	}

	client := r.clientFor(spec)

	start := time.Now()
	resp, err := client.Do(req)
	latency := time.Since(start)

	if err != nil {
		return domain.NewErrorOutcome(spec.ID, describeError(ctx, attemptCtx, timeout, err)), true
	}
	defer resp.Body.Close()

	preview, err := readBody(resp)
	if err != nil {
		return domain.NewErrorOutcome(spec.ID, describeError(ctx, attemptCtx, timeout, err)), true
	}

	return domain.NewSuccessOutcome(spec.ID, resp.StatusCode, latency, preview), false
}

func describeError(parent, attemptCtx context.Context, timeout time.Duration, err error) error {
	switch {
	case parent.Err() != nil:
		return fmt.Errorf("check cancelled: %w", parent.Err())
	case errors.Is(attemptCtx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("request timed out after %s", timeout)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("request timed out after %s", timeout)
	}

	return fmt.Errorf("HTTP request failed: %w", err)
}

// readBody keeps a bounded preview and drains the rest of the limit so the
// connection can go back to the pool.
func readBody(resp *http.Response) (string, error) {
	if resp.Body == nil {
		return "", nil
	}

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, constants.MaxBodyPreview))
	if err != nil {
		return "", err
	}

	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, constants.MaxBodyPreview))
	return string(bodyBytes), nil
}

func (r *HTTPRunner) clientFor(spec domain.EndpointSpec) *http.Client {
	key := fmt.Sprintf("%t|%t|%s", spec.FollowRedirects, spec.VerifyTLS, spec.DNSServer)

	if client, ok := r.clients.Load(key); ok {
		return client
	}

	client, _ := r.clients.LoadOrStore(key, r.newClient(spec))
	return client
}

func (r *HTTPRunner) newClient(spec domain.EndpointSpec) *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: !spec.VerifyTLS,
			MinVersion:         tls.VersionTLS12,
		},
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	if spec.DNSServer != "" {
		transport.DialContext = NewDNSResolver(spec.DNSServer, constants.DNSTimeout).DialContext
	}

	client := &http.Client{
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= constants.MaxRedirects {
				return fmt.Errorf("too many redirects")
			}
			return nil
		},
	}

	if !spec.FollowRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	return client
}

// Close releases idle connections of every cached client.
func (r *HTTPRunner) Close() {
	r.clients.Range(func(_ string, client *http.Client) bool {
		client.CloseIdleConnections()
		return true
	})
}
