package logging

import (
	"bufio"
	"bytes"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLoggerWriter returns an io.Writer that logs each written line as a log
// entry at the given level. It is used to bridge the Pulumi engine's progress
// streams into our logging setup.
func NewLoggerWriter(log *zap.Logger, level zapcore.Level) io.Writer {
	return &loggerWriter{log: log, level: level}
}

type loggerWriter struct {
	log   *zap.Logger
	level zapcore.Level
}

func (w *loggerWriter) Write(b []byte) (int, error) {
	scan := bufio.NewScanner(bytes.NewReader(b))
	for scan.Scan() {
		line := scan.Text()
		if line == "" {
			continue
		}
		if ce := w.log.Check(w.level, line); ce != nil {
			ce.Write()
		}
	}
	return len(b), scan.Err()
}
