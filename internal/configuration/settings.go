package configuration

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
)

const (
	DefaultConfigFile = "/etc/rawsys/rawsys.conf"

	KeyBackend       = "RAWSYS_BACKEND"
	KeyDirBuffer     = "RAWSYS_DIR_BUFFER"
	KeyDirMaxBuffer  = "RAWSYS_DIR_MAX_BUFFER"
	KeyEventBuffer   = "RAWSYS_EVENT_BUFFER"
	KeyEventHistory  = "RAWSYS_EVENT_HISTORY"
	KeyLogLevel      = "RAWSYS_LOG_LEVEL"
	defaultBackend   = "raw"
	defaultHistory   = 500
	defaultDirBuf    = 32 * 1024
	defaultDirMaxBuf = 4 * 1024 * 1024
	defaultEventBuf  = 64 * 1024
)

type settingsProvider interface {
	ReadGeneric(filenames ...string) (map[string]string, error)
	MapKeyToString(envMap map[string]string, key string) string
	MapKeyToInt(envMap map[string]string, key string) int
}

// Settings are the tunables shared by all commands.
type Settings struct {
	Backend       string
	DirBufSize    int
	DirMaxBufSize int
	EventBufSize  int
	EventHistory  int
	LogLevel      slog.Level
}

// DefaultSettings returns the settings used when no file sets a key.
func DefaultSettings() Settings {
	return Settings{
		Backend:       defaultBackend,
		DirBufSize:    defaultDirBuf,
		DirMaxBufSize: defaultDirMaxBuf,
		EventBufSize:  defaultEventBuf,
		EventHistory:  defaultHistory,
		LogLevel:      slog.LevelInfo,
	}
}

// LoadSettings reads filename over the defaults. A missing file is only an
// error if required is set. Backend names are checked against backends.
func LoadSettings(c settingsProvider, filename string, required bool, backends []string) (Settings, error) {
	s := DefaultSettings()

	envMap, err := c.ReadGeneric(filename)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}

		return s, fmt.Errorf("(config-settings) %w", err)
	}

	if v := c.MapKeyToString(envMap, KeyBackend); v != "" {
		if !slices.Contains(backends, v) {
			return s, fmt.Errorf("(config-settings) %w: %s=%q (one of %s)",
				ErrInvalidSetting, KeyBackend, v, strings.Join(backends, ", "))
		}
		s.Backend = v
	}

	sizes := []struct {
		key string
		dst *int
	}{
		{KeyDirBuffer, &s.DirBufSize},
		{KeyDirMaxBuffer, &s.DirMaxBufSize},
		{KeyEventBuffer, &s.EventBufSize},
	}

	for _, size := range sizes {
		v := c.MapKeyToString(envMap, size.key)
		if v == "" {
			continue
		}

		n, err := ParseSize(v)
		if err != nil {
			return s, fmt.Errorf("(config-settings) %s: %w", size.key, err)
		}
		*size.dst = n
	}

	if s.DirMaxBufSize < s.DirBufSize {
		return s, fmt.Errorf("(config-settings) %w: %s is below %s",
			ErrInvalidSetting, KeyDirMaxBuffer, KeyDirBuffer)
	}

	if c.MapKeyToString(envMap, KeyEventHistory) != "" {
		n := c.MapKeyToInt(envMap, KeyEventHistory)
		if n <= 0 {
			return s, fmt.Errorf("(config-settings) %w: %s must be a positive number",
				ErrInvalidSetting, KeyEventHistory)
		}
		s.EventHistory = n
	}

	if v := c.MapKeyToString(envMap, KeyLogLevel); v != "" {
		if err := s.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return s, fmt.Errorf("(config-settings) %w: %s=%q", ErrInvalidSetting, KeyLogLevel, v)
		}
	}

	return s, nil
}

// ParseSize parses a buffer size such as "65536", "64KiB" or "4 MB".
func ParseSize(v string) (int, error) {
	n, err := humanize.ParseBytes(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrInvalidSetting, v, err)
	}

	if n == 0 || n > math.MaxInt32 {
		return 0, fmt.Errorf("%w: size %q out of range", ErrInvalidSetting, v)
	}

	return int(n), nil
}
