package topology

import (
	"errors"
	"fmt"
)

// Sentinel kinds matched by errors.Is against a *ConfigError.
var (
	ErrMalformedBroadcast = errors.New("malformed broadcast")
	ErrUnknownName        = errors.New("unknown name")
	ErrMissingDimension   = errors.New("missing dimension")
	ErrInvalidPattern     = errors.New("invalid pattern")
	ErrInvalidModulation  = errors.New("invalid modulation")
	ErrInvalidTransform   = errors.New("invalid transform")
	ErrDuplicateName      = errors.New("duplicate name")
	ErrUnknownReceptor    = errors.New("unknown receptor")
)

// ConfigError reports a model configuration problem that aborts generation.
type ConfigError struct {
	Kind    error  // one of the Err* sentinels
	Subject string // offending template, connection or handle
	Detail  string
}

func (e *ConfigError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %v", e.Subject, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %s", e.Subject, e.Kind, e.Detail)
}

// Is matches the sentinel kind.
func (e *ConfigError) Is(target error) bool {
	return target == e.Kind
}

// Unwrap returns the sentinel kind.
func (e *ConfigError) Unwrap() error {
	return e.Kind
}

func configErr(kind error, subject, format string, args ...any) *ConfigError {
	return &ConfigError{Kind: kind, Subject: subject, Detail: fmt.Sprintf(format, args...)}
}
