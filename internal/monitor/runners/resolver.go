package runner

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/miekg/dns"
)

var ErrNoAddress = errors.New("no address records")

// DNSResolver resolves hostnames against a single DNS server instead of the
// system resolver.
type DNSResolver struct {
	server  string
	timeout time.Duration
	dialer  *net.Dialer
}

func NewDNSResolver(server string, timeout time.Duration) *DNSResolver {
	if _, _, err := net.SplitHostPort(server); err != nil {
		server = net.JoinHostPort(server, "53")
	}

	return &DNSResolver{
		server:  server,
		timeout: timeout,
		dialer:  &net.Dialer{Timeout: timeout},
	}
}

// LookupHost returns A records first, then AAAA records.
func (r *DNSResolver) LookupHost(ctx context.Context, host string) ([]string, error) {
	if ip := net.ParseIP(host); ip != nil {
		return []string{host}, nil
	}

	var addrs []string
	var lastErr error
	for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA} {
		found, err := r.query(ctx, host, qtype)
		if err != nil {
			lastErr = err
			continue
		}
		addrs = append(addrs, found...)
	}

	if len(addrs) == 0 {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, fmt.Errorf("%w for %s", ErrNoAddress, host)
	}

	return addrs, nil
}

func (r *DNSResolver) query(ctx context.Context, host string, qtype uint16) ([]string, error) {
	client := &dns.Client{
		Timeout: r.timeout,
	}

	msg := dns.Msg{}
	msg.SetQuestion(dns.Fqdn(host), qtype)

	response, _, err := client.ExchangeContext(ctx, &msg, r.server)
	if err != nil {
		return nil, fmt.Errorf("DNS query failed: %w", err)
	}

	if response.Rcode != dns.RcodeSuccess {
		return nil, fmt.Errorf("DNS error: %s", dns.RcodeToString[response.Rcode])
	}

	addrs := make([]string, 0, len(response.Answer))
	for _, answer := range response.Answer {
		switch rr := answer.(type) {
		case *dns.A:
			addrs = append(addrs, rr.A.String())
		case *dns.AAAA:
			addrs = append(addrs, rr.AAAA.String())
		}
	}

	return addrs, nil
}

// DialContext matches http.Transport.DialContext.
func (r *DNSResolver) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	host, port, err := net.SplitHostPort(address)
	if err != nil {
		return nil, err
	}

	addrs, err := r.LookupHost(ctx, host)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for _, addr := range addrs {
		conn, err := r.dialer.DialContext(ctx, network, net.JoinHostPort(addr, port))
		if err == nil {
			return conn, nil
		}
		lastErr = err
	}

	return nil, lastErr
}
