package helpers

import (
	"time"

	"github.com/rs/zerolog/log"
)

// DateFormat is the wire format for calendar dates.
const DateFormat = "2006-01-02"

// ParseDuration parses a duration string, returns default duration on error.
func ParseDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	duration, err := time.ParseDuration(durationStr)
	if err != nil {
		log.Warn().Err(err).Str("durationStr", durationStr).Dur("defaultDuration", defaultDuration).Msg("Failed to parse duration string, using default")
		return defaultDuration
	}
	return duration
}

// ParseDate parses a YYYY-MM-DD calendar date into a midnight UTC
// timestamp.
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(DateFormat, value, time.UTC)
}

// ParseDatePtr parses an optional YYYY-MM-DD string; a nil input yields
// a nil output.
func ParseDatePtr(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := ParseDate(*value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
