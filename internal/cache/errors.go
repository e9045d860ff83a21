package cache

import "errors"

var (
	// ErrMiss is returned by the fetch backends when the source could
	// not be fetched (non-2xx HTTP response, read error). Acquire reports
	// it as a miss (nil entry, false, nil error), not as an error: the
	// batch logs and continues.
	ErrMiss = errors.New("cache: source unavailable")

	// ErrIntegrity indicates a freshly-written blob's SHA-256 did not
	// match what the manifest expects, which should never happen short
	// of disk corruption.
	ErrIntegrity = errors.New("cache: integrity check failed")
)
