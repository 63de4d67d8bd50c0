package utils

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/mpapenbr/iracelog-lapanalysis/log"
)

func WaitForTCP(ctx context.Context, addr string, timeout time.Duration) error {
	timeoutReached := time.Now().Add(timeout)
	start := time.Now()
	log.Debug("wait for tcp connection",
		log.String("addr", addr),
		log.String("timeout", timeout.String()))
	var d net.Dialer
	for time.Now().Before(timeoutReached) {
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err == nil {
			conn.Close()

			log.Debug("tcp connection successful",
				log.String("addr", addr),
				log.String("duration", time.Since(start).String()))
			return nil
		}
		if err := sleep(ctx, 200*time.Millisecond); err != nil {
			return err
		}
	}
	return fmt.Errorf("%s could not be reached after %v", addr, timeout)
}

// WaitForHTTPResponse waits until the server answers any http request.
func WaitForHTTPResponse(ctx context.Context, cli *http.Client, target string,
	timeout time.Duration,
) error {
	timeoutReached := time.Now().Add(timeout)
	start := time.Now()
	log.Debug("wait for http request",
		log.String("url", target),
		log.String("timeout", timeout.String()))
	for time.Now().Before(timeoutReached) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
		if err != nil {
			return err
		}
		resp, err := cli.Do(req)
		if err == nil {
			resp.Body.Close()
			log.Debug("http request successful",
				log.String("url", target),
				log.String("duration", time.Since(start).String()))
			return nil
		}
		if err := sleep(ctx, 500*time.Millisecond); err != nil {
			return err
		}
	}
	return fmt.Errorf("%s could not be reached after %v", target, timeout)
}

// ExtractFromNatsURL returns host:port of a nats url, 4222 is used if
// no port is given.
func ExtractFromNatsURL(arg string) string {
	return extractAddr(arg, "4222")
}

// ExtractFromHTTPURL returns host:port of a http(s) url.
func ExtractFromHTTPURL(arg string) string {
	u, err := url.Parse(arg)
	if err != nil {
		return ""
	}
	if u.Scheme == "https" {
		return extractAddr(arg, "443")
	}
	return extractAddr(arg, "80")
}

func extractAddr(arg, defaultPort string) string {
	u, err := url.Parse(arg)
	if err != nil || u.Host == "" {
		return ""
	}
	if u.Port() != "" {
		return u.Host
	}
	return net.JoinHostPort(u.Hostname(), defaultPort)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
