package health

import (
	"testing"
	"time"

	"github.com/godbus/dbus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultsCheckIntervalWhenNonPositive(t *testing.T) {
	m := New(nil, 0)
	assert.Equal(t, 5*time.Second, m.checkInterval)
	assert.True(t, m.IsAvailable())
}

func TestNewKeepsExplicitCheckInterval(t *testing.T) {
	m := New(nil, 30*time.Second)
	assert.Equal(t, 30*time.Second, m.checkInterval)
}

func TestEmitDeliversFirstEventForKind(t *testing.T) {
	m := New(nil, time.Second)

	m.emit(EventStall, false)

	select {
	case ev := <-m.Events():
		assert.Equal(t, EventStall, ev.Kind)
		assert.False(t, ev.Available)
	default:
		t.Fatal("expected an event on the channel")
	}
}

func TestEmitRateLimitsRepeatedEventsWithinOneMinute(t *testing.T) {
	m := New(nil, time.Second)

	m.emit(EventStall, false)
	<-m.Events()

	m.emit(EventStall, false)

	select {
	case ev := <-m.Events():
		t.Fatalf("expected no event within the rate-limit window, got %+v", ev)
	default:
	}
}

func TestEmitAllowsEventAfterRateLimitWindowElapses(t *testing.T) {
	m := New(nil, time.Second)
	m.lastEmit[EventStall] = time.Now().Add(-2 * rateLimit)

	m.emit(EventStall, false)

	select {
	case ev := <-m.Events():
		assert.Equal(t, EventStall, ev.Kind)
	default:
		t.Fatal("expected an event once the rate-limit window has elapsed")
	}
}

func TestWatchNameOwnerEmitsAvailabilityOnOwnerChange(t *testing.T) {
	m := New(nil, time.Second)
	sigCh := make(chan *dbus.Signal, 1)
	go m.watchNameOwner(sigCh)
	defer m.Stop()

	sigCh <- &dbus.Signal{Body: []interface{}{"org.bluez", "", ":1.42"}}

	require.Eventually(t, func() bool {
		select {
		case ev := <-m.Events():
			return ev.Kind == EventAvailability && ev.Available
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
	assert.True(t, m.IsAvailable())
}

func TestWatchNameOwnerTreatsEmptyNewOwnerAsUnavailable(t *testing.T) {
	m := New(nil, time.Second)
	sigCh := make(chan *dbus.Signal, 1)
	go m.watchNameOwner(sigCh)
	defer m.Stop()

	sigCh <- &dbus.Signal{Body: []interface{}{"org.bluez", ":1.42", ""}}

	require.Eventually(t, func() bool {
		return !m.IsAvailable()
	}, time.Second, 5*time.Millisecond)
}

func TestWatchNameOwnerIgnoresShortSignalBody(t *testing.T) {
	m := New(nil, time.Second)
	sigCh := make(chan *dbus.Signal, 1)
	go m.watchNameOwner(sigCh)
	defer m.Stop()

	sigCh <- &dbus.Signal{Body: []interface{}{"org.bluez"}}

	time.Sleep(20 * time.Millisecond)
	select {
	case ev := <-m.Events():
		t.Fatalf("expected no event for a short signal body, got %+v", ev)
	default:
	}
	assert.True(t, m.IsAvailable())
}

func TestLastSuccessfulCheckReflectsExplicitTimestamp(t *testing.T) {
	m := New(nil, time.Second)
	now := time.Now()
	m.mu.Lock()
	m.lastSuccess = now
	m.mu.Unlock()

	assert.Equal(t, now, m.LastSuccessfulCheck())
}
