package configuration

import "errors"

// ErrInvalidSetting occurs when a configuration value cannot be used.
var ErrInvalidSetting = errors.New("invalid setting")
