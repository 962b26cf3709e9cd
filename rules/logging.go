package rules

import (
	"context"
	"log/slog"
	"time"
)

// EvaluatorLogEvent describes one rule evaluation for one entry.
type EvaluatorLogEvent struct {
	Engine   string
	Expr     string
	Entry    string
	Allowed  bool
	Duration time.Duration
	Err      error
}

// EvaluatorLogger records evaluator events.
type EvaluatorLogger interface {
	LogEvaluation(EvaluatorLogEvent)
}

// EvaluatorLoggerFunc adapts a function to EvaluatorLogger.
type EvaluatorLoggerFunc func(EvaluatorLogEvent)

// LogEvaluation implements EvaluatorLogger.
func (f EvaluatorLoggerFunc) LogEvaluation(event EvaluatorLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopEvaluatorLogger struct{}

func (noopEvaluatorLogger) LogEvaluation(EvaluatorLogEvent) {}

// SlogLogger writes evaluation events to logger at debug level, or warn level
// when the evaluation failed.
func SlogLogger(logger *slog.Logger) EvaluatorLogger {
	if logger == nil {
		return noopEvaluatorLogger{}
	}
	return EvaluatorLoggerFunc(func(event EvaluatorLogEvent) {
		level := slog.LevelDebug
		attrs := []slog.Attr{
			slog.String("engine", event.Engine),
			slog.String("expr", event.Expr),
			slog.String("entry", event.Entry),
			slog.Bool("allowed", event.Allowed),
			slog.Duration("duration", event.Duration),
		}
		if event.Err != nil {
			level = slog.LevelWarn
			attrs = append(attrs, slog.Any("error", event.Err))
		}
		logger.LogAttrs(context.Background(), level, "rule evaluated", attrs...)
	})
}
