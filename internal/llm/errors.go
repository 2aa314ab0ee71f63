package llm

import "fmt"

// ConfigError reports a provider that cannot be constructed: an unknown
// name or missing credentials.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "llm: " + e.Reason
}

// UnavailableError reports a transport failure or non-success status from
// the provider's API. Body is truncated for logging.
type UnavailableError struct {
	Provider string
	Status   int
	Body     string
	Err      error
}

func (e *UnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("llm: %s request failed: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("llm: %s returned status %d: %s", e.Provider, e.Status, e.Body)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// InvalidResponseError reports a reply that reached us but could not be
// turned into a classification.
type InvalidResponseError struct {
	Provider string
	Reason   string
	Raw      string
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("llm: %s returned an unusable reply: %s", e.Provider, e.Reason)
}
