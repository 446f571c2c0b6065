package logging

import (
	"strings"

	"go.uber.org/zap/zapcore"
)

// EntryLeveller is a zapcore.Core that filters log entries by logger name,
// similar to Log4j or python's logging module. A level configured for "pulumi"
// also applies to "pulumi.up", "pulumi.events", and so on unless a more
// specific level is set.
type EntryLeveller struct {
	zapcore.Core

	levels map[string]zapcore.Level
}

func NewEntryLeveller(core zapcore.Core, levels map[string]zapcore.Level) *EntryLeveller {
	el := &EntryLeveller{Core: core, levels: make(map[string]zapcore.Level, len(levels))}
	for k, v := range levels {
		el.levels[k] = v
	}
	return el
}

func (el *EntryLeveller) With(f []zapcore.Field) zapcore.Core {
	return &EntryLeveller{
		Core:   el.Core.With(f),
		levels: el.levels,
	}
}

func (el *EntryLeveller) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if e.LoggerName == "" {
		return el.Core.Check(e, ce)
	}

	nameParts := strings.Split(e.LoggerName, ".")
	for i := len(nameParts); i > 0; i-- {
		module := strings.Join(nameParts[:i], ".")
		if level, ok := el.levels[module]; ok {
			if e.Level < level {
				return nil
			}
			return ce.AddCore(e, el)
		}
	}
	if level, ok := el.levels[""]; ok {
		if e.Level < level {
			return nil
		}
		return ce.AddCore(e, el)
	}
	return el.Core.Check(e, ce)
}
