package driven

import "errors"

// Sentinel errors shared by the driven ports. Adapters wrap these with
// fmt.Errorf("...: %w", ...) so callers can match them with errors.Is.
var (
	// ErrStoreUnavailable indicates the backing key-value store could not
	// be reached.
	ErrStoreUnavailable = errors.New("issuance store unavailable")

	// ErrNotFound indicates an update targeted a host that was never issued.
	ErrNotFound = errors.New("host record not found")

	// ErrFetchFailed indicates an event feed or profile service call failed
	// (network error, timeout, or non-2xx response).
	ErrFetchFailed = errors.New("fetch failed")

	// ErrConversionFailed indicates certificate conversion produced no
	// usable output (subprocess failure, remote non-2xx, or timeout).
	ErrConversionFailed = errors.New("certificate conversion failed")
)
