package logger

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"
)

// Status is the error type returned by every fallible operation in this module.
// Code follows HTTP conventions: 4xx caller errors, 5xx internal failures.
type Status struct {
	Code    int
	Message string
	Err     error
	Request string
}

func (s *Status) Error() string {
	return s.String()
}

func (s *Status) String() string {
	var result string
	if s.Err != nil {
		result = fmt.Sprintf("%d %s: %s", s.Code, s.Message, s.Err.Error())
	} else {
		result = fmt.Sprintf("%d %s", s.Code, s.Message)
	}
	if s.Request != `` {
		result = s.Request + ` ` + result
	}
	return result
}

var output = os.Stderr

// SetOutput directs log output to "stderr", "stdout", or a file path.
func SetOutput(where string) {
	switch where {
	case `stderr`:
		output = os.Stderr
	case `stdout`:
		output = os.Stdout
	default:
		file, err := os.OpenFile(where, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Fprintln(os.Stderr, `logger.SetOutput:`, err)
			return
		}
		output = file
	}
}

type requestKeyType string

const requestKey requestKeyType = `request`

// SetRequest returns a context that tags all log lines with a request name.
func SetRequest(ctx context.Context, request string) context.Context {
	return context.WithValue(ctx, requestKey, request)
}

func getRequest(ctx context.Context) string {
	if ctx == nil {
		return ``
	}
	if req, ok := ctx.Value(requestKey).(string); ok {
		return req
	}
	return ``
}

// Error records an error and returns a Status wrapping it.
func Error(ctx context.Context, code int, err error, messages ...any) *Status {
	status := &Status{Code: code, Message: join(messages), Err: err, Request: getRequest(ctx)}
	write(`ERROR`, status.String(), caller())
	return status
}

// ErrorNoErr records a failure that has no underlying error value.
func ErrorNoErr(ctx context.Context, code int, messages ...any) *Status {
	status := &Status{Code: code, Message: join(messages), Request: getRequest(ctx)}
	write(`ERROR`, status.String(), caller())
	return status
}

// ExecError records one stderr line from a subprocess. Lines that are plainly
// informational are logged as warnings and return nil.
func ExecError(ctx context.Context, code int, line string) *Status {
	lower := strings.ToLower(line)
	if strings.Contains(lower, `warning`) || strings.Contains(lower, `info`) {
		Warn(ctx, line)
		return nil
	}
	return ErrorNoErr(ctx, code, line)
}

func Warn(ctx context.Context, messages ...any) {
	write(`WARN`, prefix(ctx)+join(messages), ``)
}

func Info(ctx context.Context, messages ...any) {
	write(`INFO`, prefix(ctx)+join(messages), ``)
}

func prefix(ctx context.Context) string {
	req := getRequest(ctx)
	if req != `` {
		return req + ` `
	}
	return ``
}

func join(messages []any) string {
	parts := make([]string, 0, len(messages))
	for _, msg := range messages {
		parts = append(parts, fmt.Sprintf(`%v`, msg))
	}
	return strings.Join(parts, ` `)
}

func caller() string {
	_, file, line, ok := runtime.Caller(2)
	if !ok {
		return ``
	}
	parts := strings.Split(file, `/`)
	if len(parts) > 2 {
		file = strings.Join(parts[len(parts)-2:], `/`)
	}
	return fmt.Sprintf(`%s:%d`, file, line)
}

func write(level string, message string, caller string) {
	stamp := time.Now().Format(`2006-01-02 15:04:05`)
	if caller != `` {
		fmt.Fprintf(output, "%s %s %s (%s)\n", stamp, level, message, caller)
	} else {
		fmt.Fprintf(output, "%s %s %s\n", stamp, level, message)
	}
}
