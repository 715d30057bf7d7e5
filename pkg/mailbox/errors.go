package mailbox

import "fmt"

// AuthExchangeError reports a failed authorization-code exchange,
// keeping the upstream status and body for diagnostics.
type AuthExchangeError struct {
	Provider   Provider
	StatusCode int
	Body       string
	Err        error
}

func (e *AuthExchangeError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s code exchange failed: status %d, body: %s", e.Provider, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s code exchange failed: %v", e.Provider, e.Err)
}

func (e *AuthExchangeError) Unwrap() error { return e.Err }

// TokenRefreshError reports a failed access-token refresh.
type TokenRefreshError struct {
	Provider   Provider
	StatusCode int
	Body       string
	Err        error
}

func (e *TokenRefreshError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s token refresh failed: status %d, body: %s", e.Provider, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s token refresh failed: %v", e.Provider, e.Err)
}

func (e *TokenRefreshError) Unwrap() error { return e.Err }

// FetchError reports a failed message listing for one integration.
// Per-message failures inside a listing are skipped, not raised.
type FetchError struct {
	Provider Provider
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s message fetch failed: %v", e.Provider, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
