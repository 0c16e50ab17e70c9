package logging

import (
	"strings"

	"go.uber.org/zap/zapcore"
)

// TraceLevel sits one step below Debug and enables every statement.
const TraceLevel = zapcore.DebugLevel - 1

// LevelFromString parses zap level names plus "trace", ignoring case.
func LevelFromString(level string) (zapcore.Level, error) {
	name := strings.ToLower(strings.TrimSpace(level))
	if name == "trace" {
		return TraceLevel, nil
	}
	return zapcore.ParseLevel(name)
}
