// Package timeoutmgr enforces per-category deadlines on D-Bus method
// calls. The Python original suspends a worker thread behind a
// threading.Event and polls it from the caller; Go has a native bounded
// wait primitive for that (context.Context plus select), so this package
// replaces the thread with one instead of porting it.
package timeoutmgr

import (
	"context"
	"fmt"
	"time"

	"github.com/Mauddib28/bleep-tool-sub001/bleeplog"
)

// Category selects which entry of DefaultTimeouts governs a call.
type Category string

const (
	CategoryConnect      Category = "connect"
	CategoryDisconnect   Category = "disconnect"
	CategoryPair         Category = "pair"
	CategoryGetProperty  Category = "get_property"
	CategorySetProperty  Category = "set_property"
	CategoryRead         Category = "read"
	CategoryWrite        Category = "write"
	CategoryStartNotify  Category = "start_notify"
	CategoryStopNotify   Category = "stop_notify"
	CategoryDefault      Category = "default"
)

// DefaultTimeouts mirrors the Python original's DEFAULT_TIMEOUTS table.
var DefaultTimeouts = map[Category]time.Duration{
	CategoryConnect:     15 * time.Second,
	CategoryDisconnect:  5 * time.Second,
	CategoryPair:        30 * time.Second,
	CategoryGetProperty: 5 * time.Second,
	CategorySetProperty: 5 * time.Second,
	CategoryRead:        10 * time.Second,
	CategoryWrite:       10 * time.Second,
	CategoryStartNotify: 5 * time.Second,
	CategoryStopNotify:  5 * time.Second,
	CategoryDefault:     10 * time.Second,
}

// DeadlineError reports that an operation did not complete within its
// timeout budget.
type DeadlineError struct {
	MethodName string
	Timeout    time.Duration
	Device     string
}

func (e *DeadlineError) Error() string {
	if e.Device != "" {
		return fmt.Sprintf("d-bus method %q timed out after %s on device %s", e.MethodName, e.Timeout, e.Device)
	}
	return fmt.Sprintf("d-bus method %q timed out after %s", e.MethodName, e.Timeout)
}

func timeoutFor(category Category, custom time.Duration) time.Duration {
	if custom > 0 {
		return custom
	}
	if d, ok := DefaultTimeouts[category]; ok {
		return d
	}
	return DefaultTimeouts[CategoryDefault]
}

// Options configures a single WithTimeout call.
type Options struct {
	Category Category
	Custom   time.Duration
	Device   string
	Method   string
}

// WithTimeout runs fn to completion, or returns a *DeadlineError once the
// category's budget (or opts.Custom, if set) elapses. fn receives a
// context it should respect if it performs its own blocking I/O; fn is
// always run to completion in its own goroutine even on timeout, mirroring
// the original's fire-and-forget worker thread (the D-Bus call itself
// cannot be cancelled mid-flight once issued).
func WithTimeout(ctx context.Context, opts Options, fn func(context.Context) (interface{}, error)) (interface{}, error) {
	timeout := timeoutFor(opts.Category, opts.Custom)
	bleeplog.Debug(fmt.Sprintf("executing %s with %s timeout", opts.Method, timeout))

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		val interface{}
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		v, err := fn(callCtx)
		done <- outcome{v, err}
	}()

	select {
	case out := <-done:
		return out.val, out.err
	case <-callCtx.Done():
		return nil, &DeadlineError{MethodName: opts.Method, Timeout: timeout, Device: opts.Device}
	}
}
