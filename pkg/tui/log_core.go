package tui

import (
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/outpostlabs/outpost/pkg/logging"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// logSink is the part of tea.Program log entries are routed through.
type logSink interface {
	Send(msg tea.Msg)
	Println(args ...interface{})
}

// LogCore routes log entries into a running bubbletea program instead of
// writing them to stderr, which the program's renderer owns while it runs.
// Verbose entries land in their task's log pane; otherwise they are printed
// above the live view.
type LogCore struct {
	zapcore.Core
	verbose bool
	sink    logSink
	enc     zapcore.Encoder

	task string
}

func NewLogCore(opts logging.LogOpts, verbose bool, program *tea.Program) zapcore.Core {
	return newLogCore(opts, verbose, program)
}

func newLogCore(opts logging.LogOpts, verbose bool, sink logSink) zapcore.Core {
	enc := opts.Encoder()
	leveller := zap.NewAtomicLevel()
	if verbose {
		leveller.SetLevel(zap.DebugLevel)
	} else {
		leveller.SetLevel(zap.ErrorLevel)
	}

	var core zapcore.Core = zapcore.NewCore(enc, os.Stderr, leveller)
	core = &LogCore{
		Core:    core,
		verbose: verbose,
		sink:    sink,
		enc:     enc,
	}
	return opts.EntryLeveller(core)
}

func (c *LogCore) With(f []zapcore.Field) zapcore.Core {
	nc := *c
	nc.Core = c.Core.With(f)
	for _, field := range f {
		if field.Key == "task" {
			nc.task = field.String
		}
	}
	return &nc
}

func (c *LogCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(e.Level) {
		return ce.AddCore(e, c)
	}
	return ce
}

func (c *LogCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	task := c.task
	nonTaskFields := make([]zapcore.Field, 0, len(fields))
	for _, f := range fields {
		if f.Key == "task" {
			task = f.String
		} else {
			nonTaskFields = append(nonTaskFields, f)
		}
	}

	buf, err := c.enc.EncodeEntry(ent, nonTaskFields)
	if err != nil {
		return err
	}
	s := strings.TrimSuffix(buf.String(), "\n")
	buf.Free()

	if c.verbose && task != "" {
		c.sink.Send(LogMessage{
			Task:    task,
			Message: s,
		})
	} else {
		c.sink.Println(s)
	}
	return nil
}
