package utils

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/mpapenbr/course-split-timer/log"
)

// WaitForTCP dials addr until it accepts a connection, the timeout is
// reached or ctx is done.
func WaitForTCP(ctx context.Context, addr string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	start := time.Now()
	log.Debug("wait for tcp connection",
		log.String("addr", addr),
		log.Duration("timeout", timeout))
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	var d net.Dialer
	for {
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err == nil {
			conn.Close()
			log.Debug("tcp connection successful",
				log.String("addr", addr),
				log.Duration("duration", time.Since(start)))
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s could not be reached after %v: %w",
				addr, time.Since(start).Round(time.Millisecond), err)
		case <-ticker.C:
		}
	}
}

// ExtractFromNatsURL returns host:port of a nats URL (default port 4222).
// Only the first server of a comma separated list is used.
func ExtractFromNatsURL(natsURL string) string {
	first, _, _ := strings.Cut(natsURL, ",")
	return hostPort(first, "4222", "nats", "tls")
}

// ExtractFromDBURL returns host:port of a postgres URL (default port 5432).
func ExtractFromDBURL(dbURL string) string {
	return hostPort(dbURL, "5432", "postgresql", "postgres")
}

func hostPort(raw, defaultPort string, schemes ...string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	for _, s := range schemes {
		if u.Scheme != s {
			continue
		}
		port := u.Port()
		if port == "" {
			port = defaultPort
		}
		return net.JoinHostPort(u.Hostname(), port)
	}
	return ""
}
