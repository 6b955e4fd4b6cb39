package setting

import (
	"errors"
	"fmt"
)

var (
	ErrPropertyNotFound     = errors.New("property not found")
	ErrPropertyTypeMismatch = errors.New("property type mismatch")
	ErrPropertyNotSecret    = errors.New("property is not a secret")
	ErrInvalidProperty      = errors.New("invalid property")
	ErrMissingProperty      = errors.New("missing property")
	ErrMissingSetting       = errors.New("missing setting")
	ErrUnknownSetting       = errors.New("unknown setting type")
	ErrInvalidSecretFlags   = errors.New("invalid secret flags")
	ErrVerify               = errors.New("verification failed")

	// ErrRegistration wraps every registration contract violation
	ErrRegistration = errors.New("invalid setting registration")
)

// PropertyError is a data error attributed to one property of one setting
type PropertyError struct {
	// Domain is the error domain of the setting type that raised it
	Domain string

	Setting  string
	Property string

	// Err is one of the package sentinels
	Err error

	Message string
}

func (e *PropertyError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	switch {
	case e.Setting == "":
		return msg
	case e.Property == "":
		return fmt.Sprintf("%s: %s", e.Setting, msg)
	}
	return fmt.Sprintf("%s.%s: %s", e.Setting, e.Property, msg)
}

func (e *PropertyError) Unwrap() error { return e.Err }

// NewPropertyError builds a PropertyError for a setting type
func NewPropertyError(info TypeInfo, property string, err error, format string, args ...any) *PropertyError {
	return &PropertyError{
		Domain:   info.ErrorDomain,
		Setting:  info.Name,
		Property: property,
		Err:      err,
		Message:  fmt.Sprintf(format, args...),
	}
}

// MissingSettingError reports a setting absent from a connection. The
// connection setting itself gets its own code.
type MissingSettingError struct {
	Name string
	// Prefix, when set, is the "setting.property" that required it
	Prefix string
}

func (e *MissingSettingError) Error() string {
	msg := fmt.Sprintf("missing '%s' setting", e.Name)
	if e.Prefix != "" {
		return e.Prefix + ": " + msg
	}
	return msg
}

func (e *MissingSettingError) Unwrap() error { return ErrMissingSetting }

// IsConnectionSetting reports whether the missing setting is the
// connection setting
func (e *MissingSettingError) IsConnectionSetting() bool {
	return e.Name == ConnectionSettingName
}

func registrationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrRegistration, fmt.Sprintf(format, args...))
}
