package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger wraps slog.Logger with helpers for the request and booking flows.
type Logger struct {
	*slog.Logger
}

// New creates a new logger instance. Text output in debug mode, JSON in
// release mode.
func New() *Logger {
	level := getLogLevel(os.Getenv("LOG_LEVEL"))

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var handler slog.Handler
	if gin.Mode() == gin.DebugMode {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{Logger: slog.New(handler)}
}

func getLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithError adds an error to logger context.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{Logger: l.Logger.With(slog.String("error", err.Error()))}
}

// WithFields adds multiple fields to logger context.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	return &Logger{Logger: l.Logger.With(args...)}
}

// LogHTTPRequest logs a served HTTP request.
func (l *Logger) LogHTTPRequest(c *gin.Context, duration time.Duration) {
	l.Logger.InfoContext(c.Request.Context(),
		"HTTP Request",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.Int("status", c.Writer.Status()),
		slog.Duration("duration", duration),
		slog.String("ip", c.ClientIP()),
		slog.Int("size", c.Writer.Size()),
	)
}

// LogOrderCreated logs a created order.
func (l *Logger) LogOrderCreated(ctx context.Context, orderID, eventID, status string) {
	l.Logger.InfoContext(ctx,
		"Order Created",
		slog.String("order_id", orderID),
		slog.String("event_id", eventID),
		slog.String("order_status", status),
	)
}

// LogOrderCancelled logs a full or partial order cancellation.
func (l *Logger) LogOrderCancelled(ctx context.Context, orderID string, reduction float64) {
	l.Logger.InfoContext(ctx,
		"Order Cancelled",
		slog.String("order_id", orderID),
		slog.Float64("reduction", reduction),
	)
}

// LogSeatReleased logs a seat returned to the available pool.
func (l *Logger) LogSeatReleased(ctx context.Context, eventID, seatID, reason string) {
	l.Logger.InfoContext(ctx,
		"Seat Released",
		slog.String("event_id", eventID),
		slog.String("seat_id", seatID),
		slog.String("reason", reason),
	)
}

// LogGatewayRejected logs a payment callback rejected at the trust boundary.
func (l *Logger) LogGatewayRejected(ctx context.Context, txID, reason string) {
	l.Logger.WarnContext(ctx,
		"Gateway Callback Rejected",
		slog.String("transaction_id", txID),
		slog.String("reason", reason),
	)
}

// ErrorWithContext logs an error message with context.
func (l *Logger) ErrorWithContext(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	args := make([]interface{}, 0, len(fields)*2+2)
	args = append(args, slog.String("error", err.Error()))
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	l.Logger.ErrorContext(ctx, msg, args...)
}

// Global logger instance (can be replaced with dependency injection)
var defaultLogger = New()

// GetDefault returns the default logger instance.
func GetDefault() *Logger {
	return defaultLogger
}

// SetDefault sets the default logger instance.
func SetDefault(logger *Logger) {
	defaultLogger = logger
}
