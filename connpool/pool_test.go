package connpool

import (
	"testing"
	"time"

	"github.com/godbus/dbus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLimitsMatchKnownDefaults(t *testing.T) {
	assert.Equal(t, 1, DefaultLimits.MinSystem)
	assert.Equal(t, 5, DefaultLimits.MaxSystem)
	assert.Equal(t, 0, DefaultLimits.MinSession)
	assert.Equal(t, 2, DefaultLimits.MaxSession)
	assert.Equal(t, 300*time.Second, DefaultLimits.MaxIdle)
	assert.Equal(t, 3600*time.Second, DefaultLimits.MaxAge)
	assert.Equal(t, 60*time.Second, DefaultLimits.SweepInterval)
}

func TestPoolCloseWithoutAcquireIsSafe(t *testing.T) {
	p := New(DefaultLimits)
	require.NotPanics(t, func() { p.Close() })
}

func TestSweepRetainsConnectionsBelowMinimumEvenWhenIdle(t *testing.T) {
	p := New(Limits{MinSystem: 2, MaxSystem: 5, SweepInterval: time.Hour})
	defer func() {
		p.mu.Lock()
		p.conns[BusSystem] = nil
		p.mu.Unlock()
		p.Close()
	}()

	p.mu.Lock()
	p.conns[BusSystem] = []*pooledConn{
		{busKind: BusSystem, state: StateIdle, created: time.Now().Add(-time.Hour), lastUse: time.Now().Add(-time.Hour)},
		{busKind: BusSystem, state: StateIdle, created: time.Now().Add(-time.Hour), lastUse: time.Now().Add(-time.Hour)},
	}
	p.limits.MaxIdle = time.Millisecond
	p.mu.Unlock()

	p.sweep()

	p.mu.Lock()
	defer p.mu.Unlock()
	assert.Len(t, p.conns[BusSystem], 2)
}

func TestReleaseMarksMatchingConnectionIdle(t *testing.T) {
	p := &Pool{conns: map[BusKind][]*pooledConn{BusSystem: {}}, proxy: map[ProxyKey]dbus.BusObject{}}
	conn := &dbus.Conn{}
	pc := &pooledConn{conn: conn, busKind: BusSystem, state: StateInUse}
	p.conns[BusSystem] = []*pooledConn{pc}

	p.Release(BusSystem, conn)

	assert.Equal(t, StateIdle, pc.state)
}

func TestProxyCachesBusObjectAcrossCalls(t *testing.T) {
	p := &Pool{conns: map[BusKind][]*pooledConn{}, proxy: map[ProxyKey]dbus.BusObject{}}
	conn := &dbus.Conn{}
	key := ProxyKey{Bus: BusSystem, Dest: "org.bluez", Path: "/org/bluez/hci0", Iface: "org.bluez.Adapter1"}

	first := p.Proxy(key, conn)
	second := p.Proxy(key, conn)

	assert.Same(t, first, second)
}
