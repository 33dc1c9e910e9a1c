package llm

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"
)

// Fields carries structured key-value context for a log entry.
type Fields map[string]interface{}

// Logger is the logging surface the client and its callers write to.
type Logger interface {
	Debug(ctx context.Context, msg string, fields Fields)
	Info(ctx context.Context, msg string, fields Fields)
	Warn(ctx context.Context, msg string, fields Fields)
	Error(ctx context.Context, err error, fields Fields)
}

// NewLogger builds a logx-backed Logger and sets the global level from the
// given name.
func NewLogger(level string) Logger {
	logx.SetLevel(parseLevel(level))
	return &logxLogger{}
}

type logxLogger struct{}

func (l *logxLogger) Debug(ctx context.Context, msg string, fields Fields) {
	logx.WithContext(ctx).Debug(msgWithFields(msg, fields))
}

func (l *logxLogger) Info(ctx context.Context, msg string, fields Fields) {
	logx.WithContext(ctx).Info(msgWithFields(msg, fields))
}

func (l *logxLogger) Warn(ctx context.Context, msg string, fields Fields) {
	// logx has no warn level; Slow is its closest channel.
	logx.WithContext(ctx).Slow(msgWithFields(msg, fields))
}

func (l *logxLogger) Error(ctx context.Context, err error, fields Fields) {
	logx.WithContext(ctx).Error(msgWithFields(err.Error(), fields))
}

func parseLevel(level string) uint32 {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return logx.DebugLevel
	case "info":
		return logx.InfoLevel
	case "error":
		return logx.ErrorLevel
	case "severe", "fatal":
		return logx.SevereLevel
	default:
		return logx.InfoLevel
	}
}

// msgWithFields flattens fields into "msg | k=v k=v" with keys sorted so the
// same entry always renders the same way.
func msgWithFields(msg string, fields Fields) string {
	if len(fields) == 0 {
		return msg
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(msg)
	b.WriteString(" |")
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, fields[k])
	}
	return b.String()
}
