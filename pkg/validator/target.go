package validator

import (
	"net"
	"net/http"
	"net/url"
	"strings"
)

// ValidateURL accepts absolute http(s) URLs with a host.
func ValidateURL(target string) bool {
	if target == "" {
		return false
	}

	u, err := url.Parse(target)
	if err != nil {
		return false
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}

	return u.Host != ""
}

func ValidateMethod(method string) bool {
	validMethods := map[string]bool{
		http.MethodGet:     true,
		http.MethodHead:    true,
		http.MethodPost:    true,
		http.MethodPut:     true,
		http.MethodPatch:   true,
		http.MethodDelete:  true,
		http.MethodOptions: true,
	}
	return validMethods[strings.ToUpper(method)]
}

// ValidateHostPort checks host:port addresses such as a DNS server "8.8.8.8:53".
// A bare host is accepted and gets the default port appended by the caller.
func ValidateHostPort(address string) bool {
	if address == "" {
		return false
	}

	if host, port, err := net.SplitHostPort(address); err == nil {
		return host != "" && port != ""
	}

	return !strings.Contains(address, "://") && !strings.ContainsAny(address, " /")
}

func ValidateStatusCode(code int) bool {
	return code >= 100 && code <= 599
}
