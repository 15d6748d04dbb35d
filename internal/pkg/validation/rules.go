package validation

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Validation rule patterns
var (
	// Wall-clock time as HH:MM, 24 hour
	ClockPattern = `^([01]\d|2[0-3]):[0-5]\d$`
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Clock *regexp.Regexp
}{
	Clock: regexp.MustCompile(ClockPattern),
}

// hhmm validates a "HH:MM" wall-clock string.
func hhmm(fl validator.FieldLevel) bool {
	return CompiledPatterns.Clock.MatchString(fl.Field().String())
}

// RegisterCustomValidators installs the scheduling-specific binding
// rules on gin's validator engine. Call once at startup before any
// request binding happens.
func RegisterCustomValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("hhmm", hhmm)
}
