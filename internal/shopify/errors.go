package shopify

import (
	"errors"
	"fmt"
)

// ErrCredentialRejected marks an upstream auth failure. Callers branch
// on it with errors.Is: onboarding rejects the credentials immediately,
// sync records the tenant attempt as failed without retrying.
var ErrCredentialRejected = errors.New("access token rejected by upstream")

// FetchError is any transport or upstream-API failure, carrying enough
// context to isolate the failing resource and shop. Anything not
// wrapping ErrCredentialRejected is transient and eligible for retry on
// a later sweep.
type FetchError struct {
	Resource   string
	Shop       string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s for %s: status %d: %v", e.Resource, e.Shop, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s for %s: %v", e.Resource, e.Shop, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
