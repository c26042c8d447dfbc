// Package action defines the uniform outcome of a chart mutation.
package action

import (
	"context"
	"fmt"
	"log/slog"
)

// Result is what every server action returns. Failures are values, not
// errors: the caller decides how to surface Message.
type Result struct {
	Message         string `json:"message"`
	ActionSucceeded bool   `json:"actionSucceeded"`
	Result          any    `json:"result,omitempty"`
	// Stale is set when the write went through but the chart could not be
	// reloaded afterwards, so what the client holds may be out of date.
	Stale bool `json:"stale,omitempty"`
}

func Success(message string, result any) Result {
	return Result{Message: message, ActionSucceeded: true, Result: result}
}

func Failure(message string) Result {
	return Result{Message: message}
}

// MarkStale flags a successful result whose chart reload failed.
func (r Result) MarkStale() Result {
	r.Stale = true
	r.Message += " (chart not refreshed, reload to see the latest)"
	return r
}

// Run executes fn and converts its outcome into a Result. Errors are logged
// with the action name; a panic is recovered and reported as a failure.
func Run(ctx context.Context, logger *slog.Logger, name, okMessage string, fn func(context.Context) (any, error)) (res Result) {
	if logger == nil {
		logger = slog.Default()
	}
	defer func() {
		if r := recover(); r != nil {
			logger.ErrorContext(ctx, "server action panicked", "action", name, "panic", fmt.Sprint(r))
			res = Failure(fmt.Sprintf("%s failed", name))
		}
	}()

	out, err := fn(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "server action failed", "action", name, "error", err)
		return Failure(fmt.Sprintf("%s failed: %v", name, err))
	}
	return Success(okMessage, out)
}
