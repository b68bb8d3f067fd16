package params

import (
	"fmt"
	"time"
)

// ConfigurationError reports a malformed parameter table: bad piecewise
// spec, unparseable value, wrong node shape. It is fatal at load time and
// aborts the run before any record is processed.
type ConfigurationError struct {
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parameter configuration error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("parameter configuration error: %s", e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// MissingParameterError reports that a key path has no value for the
// active policy date. A missing parameter means the requested policy year
// is unsupported by the loaded table, so this is fatal for the run and
// never retried.
type MissingParameterError struct {
	Path string
	Date time.Time
}

func (e *MissingParameterError) Error() string {
	if e.Date.IsZero() {
		return fmt.Sprintf("missing policy parameter %q", e.Path)
	}
	return fmt.Sprintf("missing policy parameter %q for policy date %s", e.Path, e.Date.Format("2006-01-02"))
}
