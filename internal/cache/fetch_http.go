package cache

import (
	"context"
	"io"
	"net"
	"net/http"
	"syscall"
	"time"
)

// newHTTPClient tunes connection pooling, timeouts, and TCP_NODELAY the
// way the teacher's pkg/common/network.go dialer and pkg/storage/s3.go
// client construction do, since this client also repeatedly pulls
// multi-megabyte archives from a handful of content-library hosts.
func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 60 * time.Second,
		Transport: &http.Transport{
			MaxConnsPerHost:       16,
			MaxIdleConns:          16,
			MaxIdleConnsPerHost:   16,
			IdleConnTimeout:       90 * time.Second,
			ResponseHeaderTimeout: 20 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				dialer := &net.Dialer{
					Timeout:   30 * time.Second,
					KeepAlive: 30 * time.Second,
					Control: func(network, address string, c syscall.RawConn) error {
						return c.Control(func(fd uintptr) {
							_ = syscall.SetsockoptInt(int(fd), syscall.IPPROTO_TCP, syscall.TCP_NODELAY, 1)
						})
					},
				}
				return dialer.DialContext(ctx, network, addr)
			},
		},
	}
}

func fetchHTTP(ctx context.Context, client *http.Client, url, userAgent string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, ErrMiss
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, ErrMiss
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ErrMiss
	}
	return body, nil
}
