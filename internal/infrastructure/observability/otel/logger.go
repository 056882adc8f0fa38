package otel

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// Logger 構造化ロガー
// フィールドは出力前にRedactで秘匿情報を取り除く
type Logger struct {
	tracer   trace.Tracer
	minLevel LogLevel
	mu       sync.Mutex
	out      io.Writer
	now      func() time.Time
}

// LoggerOption Loggerのオプション
type LoggerOption func(*Logger)

// WithLevel 出力する最小のログレベルを設定
func WithLevel(level LogLevel) LoggerOption {
	return func(l *Logger) {
		l.minLevel = level
	}
}

// WithWriter 出力先を設定
func WithWriter(w io.Writer) LoggerOption {
	return func(l *Logger) {
		l.out = w
	}
}

// NewLogger 新しいLoggerを作成
func NewLogger(tracer trace.Tracer, opts ...LoggerOption) *Logger {
	l := &Logger{
		tracer:   tracer,
		minLevel: LogLevelDebug,
		out:      os.Stderr,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LogLevel ログレベル
type LogLevel string

const (
	LogLevelDebug LogLevel = "DEBUG"
	LogLevelInfo  LogLevel = "INFO"
	LogLevelWarn  LogLevel = "WARN"
	LogLevelError LogLevel = "ERROR"
)

func (l LogLevel) rank() int {
	switch l {
	case LogLevelDebug:
		return 0
	case LogLevelInfo:
		return 1
	case LogLevelWarn:
		return 2
	default:
		return 3
	}
}

// ParseLogLevel 文字列からログレベルを取得（大文字小文字を区別しない）
func ParseLogLevel(s string) (LogLevel, bool) {
	switch LogLevel(strings.ToUpper(strings.TrimSpace(s))) {
	case LogLevelDebug:
		return LogLevelDebug, true
	case LogLevelInfo:
		return LogLevelInfo, true
	case LogLevelWarn, "WARNING":
		return LogLevelWarn, true
	case LogLevelError:
		return LogLevelError, true
	default:
		return "", false
	}
}

// LevelForEnvironment 環境ごとの最小ログレベルを返す
// productionではエラーのみ出力する。overrideが有効な値であればそれを優先する
func LevelForEnvironment(environment, override string) LogLevel {
	if level, ok := ParseLogLevel(override); ok {
		return level
	}
	if environment == "production" {
		return LogLevelError
	}
	return LogLevelDebug
}

// LogEntry ログエントリ
type LogEntry struct {
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Timestamp string                 `json:"timestamp"`
	TraceID   string                 `json:"trace_id,omitempty"`
	SpanID    string                 `json:"span_id,omitempty"`
	Context   map[string]interface{} `json:"context,omitempty"`
}

// Enabled levelのログが出力されるかどうか
func (l *Logger) Enabled(level LogLevel) bool {
	return level.rank() >= l.minLevel.rank()
}

// Log ログを出力
func (l *Logger) Log(ctx context.Context, level LogLevel, message string, fields map[string]interface{}) {
	if !l.Enabled(level) {
		return
	}

	entry := LogEntry{
		Level:     string(level),
		Message:   message,
		Timestamp: l.now().UTC().Format(time.RFC3339Nano),
		Context:   Redact(fields),
	}

	// トレースIDとSpanIDを取得
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		entry.TraceID = span.SpanContext().TraceID().String()
		entry.SpanID = span.SpanContext().SpanID().String()
	}

	jsonData, err := json.Marshal(entry)
	if err != nil {
		log.Printf("failed to marshal log entry: %v", err)
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.out.Write(append(jsonData, '\n'))
}

// Debug Debugレベルのログを出力
func (l *Logger) Debug(ctx context.Context, message string, fields map[string]interface{}) {
	l.Log(ctx, LogLevelDebug, message, fields)
}

// Info Infoレベルのログを出力
func (l *Logger) Info(ctx context.Context, message string, fields map[string]interface{}) {
	l.Log(ctx, LogLevelInfo, message, fields)
}

// Warn Warnレベルのログを出力
func (l *Logger) Warn(ctx context.Context, message string, fields map[string]interface{}) {
	l.Log(ctx, LogLevelWarn, message, fields)
}

// Error Errorレベルのログを出力
func (l *Logger) Error(ctx context.Context, message string, err error, fields map[string]interface{}) {
	merged := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		merged[k] = v
	}
	if err != nil {
		merged["error"] = err.Error()
	}
	l.Log(ctx, LogLevelError, message, merged)
}
