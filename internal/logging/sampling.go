package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newSampledCore samples routine entries and lets Error and above through untouched.
func newSampledCore(core zapcore.Core, cfg SamplingConfig) zapcore.Core {
	if !cfg.Enabled {
		return core
	}

	severe := zap.LevelEnablerFunc(func(l zapcore.Level) bool { return l >= zapcore.ErrorLevel })
	routine := zap.LevelEnablerFunc(func(l zapcore.Level) bool { return l < zapcore.ErrorLevel })

	return zapcore.NewTee(
		levelRange{Core: core, allow: severe},
		zapcore.NewSamplerWithOptions(levelRange{Core: core, allow: routine},
			cfg.Tick.Duration(), cfg.Initial, cfg.Thereafter),
	)
}

// levelRange restricts a core to the levels allow accepts.
type levelRange struct {
	zapcore.Core
	allow zapcore.LevelEnabler
}

func (r levelRange) Enabled(lvl zapcore.Level) bool {
	return r.allow.Enabled(lvl) && r.Core.Enabled(lvl)
}

func (r levelRange) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !r.Enabled(e.Level) {
		return ce
	}
	return r.Core.Check(e, ce)
}

func (r levelRange) With(fields []zapcore.Field) zapcore.Core {
	return levelRange{Core: r.Core.With(fields), allow: r.allow}
}
