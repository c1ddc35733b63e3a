package notify

import (
	"ApiMonitor/internal/monitor/domain"
	"bufio"
	"context"
	"net"
	"net/textproto"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSMTP accepts one session and returns the DATA payload.
func fakeSMTP(t *testing.T) (string, int, <-chan string) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	data := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		tp := textproto.NewConn(conn)
		_ = tp.PrintfLine("220 localhost ESMTP")
		for {
			line, err := tp.ReadLine()
			if err != nil {
				return
			}
			cmd := strings.ToUpper(strings.SplitN(line, " ", 2)[0])
			switch cmd {
			case "EHLO", "HELO":
				_ = tp.PrintfLine("250 localhost")
			case "MAIL", "RCPT", "RSET", "NOOP":
				_ = tp.PrintfLine("250 OK")
			case "DATA":
				_ = tp.PrintfLine("354 go ahead")
				body, _ := tp.ReadDotLines()
				data <- strings.Join(body, "\n")
				_ = tp.PrintfLine("250 queued")
			case "QUIT":
				_ = tp.PrintfLine("221 bye")
				return
			default:
				_ = tp.PrintfLine("502 not implemented")
			}
		}
	}()

	host, port, _ := net.SplitHostPort(ln.Addr().String())
	p, _ := strconv.Atoi(port)
	return host, p, data
}

func TestEmailNotifier_Send(t *testing.T) {
	host, port, data := fakeSMTP(t)

	channel := &domain.ChannelConfig{ID: "mail", Type: domain.ChannelEmail, Settings: domain.EmailSettings{
		SMTPHost:  host,
		SMTPPort:  port,
		FromEmail: "monitor@example.com",
		ToEmails:  []string{"ops@example.com", "dev@example.com"},
	}}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := NewEmailNotifier().Send(ctx, channel, failureEvent("api"), domain.EndpointSpec{ID: "api", URL: "https://api.example.com"})
	require.NoError(t, err)

	select {
	case body := <-data:
		assert.Contains(t, body, "Subject: [FAILURE] api is unhealthy")
		assert.Contains(t, body, "To: ops@example.com, dev@example.com")
		assert.Contains(t, body, "URL: https://api.example.com")
	case <-time.After(5 * time.Second):
		t.Fatal("no message received")
	}
}

func TestEmailNotifier_ConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().(*net.TCPAddr)
	_ = ln.Close()

	channel := &domain.ChannelConfig{ID: "mail", Type: domain.ChannelEmail, Settings: domain.EmailSettings{
		SMTPHost:  "127.0.0.1",
		SMTPPort:  addr.Port,
		FromEmail: "monitor@example.com",
		ToEmails:  []string{"ops@example.com"},
	}}

	err = NewEmailNotifier().Send(context.Background(), channel, failureEvent("api"), domain.EndpointSpec{ID: "api"})
	assert.ErrorContains(t, err, "failed to connect")
}

func TestBuildEmail_Headers(t *testing.T) {
	msg := NewMessage(failureEvent("api"), domain.EndpointSpec{ID: "api"})
	raw := string(buildEmail(domain.EmailSettings{FromEmail: "a@b.c", ToEmails: []string{"x@y.z"}}, msg))

	reader := textproto.NewReader(bufio.NewReader(strings.NewReader(raw)))
	header, err := reader.ReadMIMEHeader()
	require.NoError(t, err)

	assert.Equal(t, "a@b.c", header.Get("From"))
	assert.Equal(t, "text/plain; charset=UTF-8", header.Get("Content-Type"))
}
