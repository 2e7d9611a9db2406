// Package connpool maintains a small pool of D-Bus connections per bus
// kind, grounded on bleep/dbus/connection_pool.py's DBusConnectionPool.
// godbus/dbus connections are safe for concurrent use by multiple
// goroutines, so unlike the Python original this pool exists mainly to
// bound proxy cache growth and age out long-lived connections rather than
// to serialize access to an otherwise single-threaded library.
package connpool

import (
	"fmt"
	"sync"
	"time"

	"github.com/godbus/dbus"

	"github.com/Mauddib28/bleep-tool-sub001/bleeplog"
)

// BusKind selects which D-Bus bus a pooled connection belongs to.
type BusKind string

const (
	BusSystem  BusKind = "system"
	BusSession BusKind = "session"
)

// State mirrors connection_pool.py's ConnectionState enum.
type State int

const (
	StateIdle State = iota
	StateInUse
	StateUnhealthy
	StateClosed
)

// pooledConn wraps one *dbus.Conn with pool bookkeeping.
type pooledConn struct {
	conn    *dbus.Conn
	busKind BusKind
	state   State
	created time.Time
	lastUse time.Time
	uses    int
}

// Limits configures pool sizing and aging, defaulting to the values the
// Python original ships.
type Limits struct {
	MinSystem, MaxSystem   int
	MinSession, MaxSession int
	MaxIdle                time.Duration
	MaxAge                 time.Duration
	SweepInterval          time.Duration
}

// DefaultLimits matches DBusConnectionPool's constructor defaults.
var DefaultLimits = Limits{
	MinSystem: 1, MaxSystem: 5,
	MinSession: 0, MaxSession: 2,
	MaxIdle:       300 * time.Second,
	MaxAge:        3600 * time.Second,
	SweepInterval: 60 * time.Second,
}

// ProxyKey identifies a cached bus-object proxy.
type ProxyKey struct {
	Bus   BusKind
	Dest  string
	Path  dbus.ObjectPath
	Iface string
}

// Pool owns the system/session connection slices plus the proxy cache,
// with a background sweeper aging out idle/stale connections.
type Pool struct {
	limits Limits

	mu    sync.Mutex
	conns map[BusKind][]*pooledConn
	proxy map[ProxyKey]dbus.BusObject

	stop chan struct{}
}

// New creates a Pool and starts its maintenance sweeper. Call Close to
// stop the sweeper and release held connections.
func New(limits Limits) *Pool {
	p := &Pool{
		limits: limits,
		conns:  map[BusKind][]*pooledConn{BusSystem: {}, BusSession: {}},
		proxy:  map[ProxyKey]dbus.BusObject{},
		stop:   make(chan struct{}),
	}
	go p.maintenanceLoop()
	return p
}

func (p *Pool) dial(kind BusKind) (*dbus.Conn, error) {
	switch kind {
	case BusSession:
		return dbus.SessionBus()
	default:
		return dbus.SystemBus()
	}
}

// Acquire returns an idle connection of kind, creating one if the pool is
// below its max and none are idle.
func (p *Pool) Acquire(kind BusKind) (*dbus.Conn, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, pc := range p.conns[kind] {
		if pc.state == StateIdle {
			pc.state = StateInUse
			pc.lastUse = time.Now()
			pc.uses++
			return pc.conn, nil
		}
	}

	max := p.limits.MaxSystem
	if kind == BusSession {
		max = p.limits.MaxSession
	}
	if len(p.conns[kind]) >= max {
		// Pool exhausted: hand back the first (oldest-created) pooled
		// connection, in use or not, rather than blocking, matching the
		// pool's best-effort reuse semantics.
		if len(p.conns[kind]) > 0 {
			return p.conns[kind][0].conn, nil
		}
	}

	conn, err := p.dial(kind)
	if err != nil {
		return nil, fmt.Errorf("connpool: dial %s: %w", kind, err)
	}
	pc := &pooledConn{conn: conn, busKind: kind, state: StateInUse, created: time.Now(), lastUse: time.Now(), uses: 1}
	p.conns[kind] = append(p.conns[kind], pc)
	return conn, nil
}

// Release marks conn idle again so a future Acquire can reuse it.
func (p *Pool) Release(kind BusKind, conn *dbus.Conn) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, pc := range p.conns[kind] {
		if pc.conn == conn {
			pc.state = StateIdle
			pc.lastUse = time.Now()
			return
		}
	}
}

// Proxy returns a cached bus object for key, creating it via conn if
// absent.
func (p *Pool) Proxy(key ProxyKey, conn *dbus.Conn) dbus.BusObject {
	p.mu.Lock()
	defer p.mu.Unlock()
	if obj, ok := p.proxy[key]; ok {
		return obj
	}
	obj := conn.Object(key.Dest, key.Path)
	p.proxy[key] = obj
	return obj
}

func (p *Pool) maintenanceLoop() {
	interval := p.limits.SweepInterval
	if interval <= 0 {
		interval = DefaultLimits.SweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			p.sweep()
		}
	}
}

func (p *Pool) sweep() {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	for kind, list := range p.conns {
		min := p.limits.MinSystem
		if kind == BusSession {
			min = p.limits.MinSession
		}
		kept := list[:0]
		for _, pc := range list {
			tooOld := p.limits.MaxAge > 0 && now.Sub(pc.created) > p.limits.MaxAge
			tooIdle := pc.state == StateIdle && p.limits.MaxIdle > 0 && now.Sub(pc.lastUse) > p.limits.MaxIdle
			if (tooOld || tooIdle) && len(kept) >= min {
				bleeplog.Debug(fmt.Sprintf("connpool: retiring %s connection (age=%s idle=%s)", kind, now.Sub(pc.created), now.Sub(pc.lastUse)))
				pc.conn.Close()
				pc.state = StateClosed
				continue
			}
			kept = append(kept, pc)
		}
		p.conns[kind] = kept
	}
}

// Close stops the maintenance sweeper and closes every pooled connection.
func (p *Pool) Close() {
	close(p.stop)
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, list := range p.conns {
		for _, pc := range list {
			pc.conn.Close()
			pc.state = StateClosed
		}
	}
}
