package errors

import "fmt"

// Common error types.
var (
	// Config errors.
	ErrEmptyConfigPath   = fmt.Errorf("config file path cannot be empty")
	ErrInvalidConfigPath = fmt.Errorf("invalid config file path")
	ErrConfigParse       = fmt.Errorf("failed to parse config")
	ErrConfigValidation  = fmt.Errorf("invalid configuration")

	// Auth errors. ErrAuth aborts the whole run: nothing can be
	// retrieved without a valid credential.
	ErrAuth = fmt.Errorf("authentication failed")

	// Catalog errors. A query error is fatal for its search unit only;
	// a transient error is retried with backoff before being treated
	// as a query error.
	ErrCatalogQuery     = fmt.Errorf("catalog query failed")
	ErrTransientCatalog = fmt.Errorf("transient catalog error")

	// Selection and resolution outcomes, recorded in the run summary
	// rather than aborting anything.
	ErrNoProductFound       = fmt.Errorf("no product found")
	ErrUnavailableComponent = fmt.Errorf("component not available on product")

	// Download errors.
	ErrDownloadFailed = fmt.Errorf("download failed")
	ErrNotRetriable   = fmt.Errorf("not retriable")
	ErrInvalidPath    = fmt.Errorf("invalid path")
)

// Wrap wraps an error with additional context.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with additional formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
