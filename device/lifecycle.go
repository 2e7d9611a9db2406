package device

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/Mauddib28/bleep-tool-sub001/bleeplog"
	bzdevice "github.com/Mauddib28/bleep-tool-sub001/bluez/profile/device"
	"github.com/Mauddib28/bleep-tool-sub001/errtax"
	"github.com/Mauddib28/bleep-tool-sub001/timeoutmgr"
)

// ConnectOptions configures Connect's retry loop.
type ConnectOptions struct {
	Retries     int           // defaults to 3, matching device_le.py's connect()
	BaseDelay   time.Duration // defaults to 200ms
	MaxDelay    time.Duration // defaults to 1.6s
}

func (o ConnectOptions) withDefaults() ConnectOptions {
	if o.Retries <= 0 {
		o.Retries = 3
	}
	if o.BaseDelay <= 0 {
		o.BaseDelay = 200 * time.Millisecond
	}
	if o.MaxDelay <= 0 {
		o.MaxDelay = 1600 * time.Millisecond
	}
	return o
}

// backoffDelay reproduces device_le.py's exponential backoff:
// min(0.2 * 2**(attempt-1), 1.6) seconds.
func backoffDelay(attempt int, base, max time.Duration) time.Duration {
	d := time.Duration(float64(base) * math.Pow(2, float64(attempt-1)))
	if d > max {
		return max
	}
	return d
}

// Connect drives dev1.Connect() with bounded retry, escalating only on
// transient landmine classifications (action_in_progress, no_reply) and
// giving up immediately on a permission-axis classification (the remote
// side has deliberately refused, retrying won't help).
func Connect(ctx context.Context, dev1 *bzdevice.Device1, opts ConnectOptions) error {
	opts = opts.withDefaults()

	var lastErr error
	for attempt := 1; attempt <= opts.Retries; attempt++ {
		bleeplog.Debug(fmt.Sprintf("connect attempt %d/%d", attempt, opts.Retries))

		_, err := timeoutmgr.WithTimeout(ctx, timeoutmgr.Options{
			Category: timeoutmgr.CategoryConnect,
			Method:   "Connect",
			Device:   string(dev1.Path()),
		}, func(callCtx context.Context) (interface{}, error) {
			return nil, dev1.Connect()
		})
		if err == nil {
			return nil
		}
		lastErr = err

		class := errtax.Classify(err, errtax.KindDevice, errtax.OpConnect)
		if class.Axis == errtax.AxisPermission {
			return fmt.Errorf("device: connect refused: %w", err)
		}
		transient := class.Category == errtax.CategoryActionInProgress || class.Category == errtax.CategoryNoReply
		if !transient || attempt >= opts.Retries {
			break
		}

		delay := backoffDelay(attempt, opts.BaseDelay, opts.MaxDelay)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return fmt.Errorf("device: connect failed after %d attempts: %w", opts.Retries, lastErr)
}

// Disconnect tears down the connection with the disconnect timeout
// category.
func Disconnect(ctx context.Context, dev1 *bzdevice.Device1) error {
	_, err := timeoutmgr.WithTimeout(ctx, timeoutmgr.Options{
		Category: timeoutmgr.CategoryDisconnect,
		Method:   "Disconnect",
		Device:   string(dev1.Path()),
	}, func(callCtx context.Context) (interface{}, error) {
		return nil, dev1.Disconnect()
	})
	return err
}
