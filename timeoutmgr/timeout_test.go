package timeoutmgr

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithTimeoutReturnsResultWhenFnCompletesInTime(t *testing.T) {
	val, err := WithTimeout(context.Background(), Options{Category: CategoryRead, Method: "ReadValue"},
		func(ctx context.Context) (interface{}, error) {
			return "ok", nil
		})

	require.NoError(t, err)
	assert.Equal(t, "ok", val)
}

func TestWithTimeoutPropagatesFnError(t *testing.T) {
	boom := errors.New("boom")

	_, err := WithTimeout(context.Background(), Options{Category: CategoryWrite, Method: "WriteValue"},
		func(ctx context.Context) (interface{}, error) {
			return nil, boom
		})

	assert.Equal(t, boom, err)
}

func TestWithTimeoutReturnsDeadlineErrorWhenFnOutlivesBudget(t *testing.T) {
	_, err := WithTimeout(context.Background(), Options{
		Category: CategoryConnect,
		Custom:   5 * time.Millisecond,
		Method:   "Connect",
		Device:   "/org/bluez/hci0/dev_AA_BB",
	}, func(ctx context.Context) (interface{}, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	require.Error(t, err)
	var deadlineErr *DeadlineError
	require.ErrorAs(t, err, &deadlineErr)
	assert.Equal(t, "Connect", deadlineErr.MethodName)
	assert.Equal(t, "/org/bluez/hci0/dev_AA_BB", deadlineErr.Device)
	assert.Equal(t, 5*time.Millisecond, deadlineErr.Timeout)
}

func TestDeadlineErrorMessageOmitsDeviceWhenUnset(t *testing.T) {
	err := &DeadlineError{MethodName: "Pair", Timeout: 30 * time.Second}

	assert.NotContains(t, err.Error(), "on device")
	assert.Contains(t, err.Error(), "Pair")
}

func TestDeadlineErrorMessageIncludesDeviceWhenSet(t *testing.T) {
	err := &DeadlineError{MethodName: "Pair", Timeout: 30 * time.Second, Device: "/org/bluez/hci0/dev_AA_BB"}

	assert.Contains(t, err.Error(), "on device /org/bluez/hci0/dev_AA_BB")
}

func TestTimeoutForPrefersCustomOverCategory(t *testing.T) {
	assert.Equal(t, 42*time.Second, timeoutFor(CategoryConnect, 42*time.Second))
}

func TestTimeoutForFallsBackToCategoryDefault(t *testing.T) {
	assert.Equal(t, DefaultTimeouts[CategoryConnect], timeoutFor(CategoryConnect, 0))
}

func TestTimeoutForUnknownCategoryFallsBackToDefault(t *testing.T) {
	assert.Equal(t, DefaultTimeouts[CategoryDefault], timeoutFor(Category("unheard-of"), 0))
}
