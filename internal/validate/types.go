// SPDX-License-Identifier: MIT

package validate

import (
	"strings"

	"github.com/rs/zerolog"
)

// LogLevels are the level names accepted in configuration.
var LogLevels = []string{
	zerolog.LevelDebugValue,
	zerolog.LevelInfoValue,
	zerolog.LevelWarnValue,
	zerolog.LevelErrorValue,
}

// LogLevel validates a zerolog level name from LogLevels, ignoring case.
func (v *Validator) LogLevel(field, value string) {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(value)))
	if err != nil || level < zerolog.DebugLevel || level > zerolog.ErrorLevel {
		v.AddError(field, "must be one of "+strings.Join(LogLevels, ", "), value)
	}
}
